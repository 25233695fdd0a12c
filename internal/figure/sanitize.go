package figure

import "strings"

const defaultBackground = "white"

var defaultMargin = Margin{L: 10, R: 10, T: 40, B: 10}

// Sanitize fills unset style fields with defaults.
func Sanitize(st Style) Style {
	st.Title = strings.TrimSpace(st.Title)
	if strings.TrimSpace(st.Background) == "" {
		st.Background = defaultBackground
	}
	if st.Margin == nil {
		m := defaultMargin
		st.Margin = &m
	} else {
		// copy so the caller's value is never shared with the figure
		m := *st.Margin
		m.L, m.R, m.T, m.B = nonNeg(m.L), nonNeg(m.R), nonNeg(m.T), nonNeg(m.B)
		st.Margin = &m
	}
	return st
}

func nonNeg(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
