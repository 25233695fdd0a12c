// Package palette resolves symbolic color names ("Teal") to concrete CSS
// colors. A Palette is built once and passed to the aggregator; it is never
// mutated afterwards.
package palette

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var reRGB = regexp.MustCompile(`(?i)^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`)

type entry struct {
	Name  string
	Color colorful.Color
}

type Palette struct {
	entries map[string]entry
	order   []string
}

// Swatch is one palette row as exposed to clients.
type Swatch struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Transparent string `json:"transparent"`
}

// New builds a palette from name → concrete color. Values must be hex,
// rgb() or rgba() strings.
func New(colors map[string]string) (Palette, error) {
	p := Palette{entries: make(map[string]entry, len(colors))}
	names := make([]string, 0, len(colors))
	for n := range colors {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c, ok := parse(colors[n])
		if !ok {
			return Palette{}, fmt.Errorf("palette: %q: not a concrete color: %q", n, colors[n])
		}
		key := strings.ToLower(strings.TrimSpace(n))
		if _, dup := p.entries[key]; dup {
			return Palette{}, fmt.Errorf("palette: duplicate name %q", n)
		}
		p.entries[key] = entry{Name: n, Color: c}
		p.order = append(p.order, key)
	}
	return p, nil
}

// Lookup returns the opaque rgb() value for a palette name.
func (p Palette) Lookup(name string) (string, bool) {
	e, ok := p.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return rgb(e.Color), true
}

// Concrete resolves name for a slot that needs a real color: palette names
// map to their value, strings that already parse as a color are kept, and
// anything else becomes fallback.
func (p Palette) Concrete(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if v, ok := p.Lookup(name); ok {
		return v
	}
	if IsConcrete(name) {
		return name
	}
	return fallback
}

// LinkColor resolves a link color. Palette names get their transparent
// variant; unknown names pass through untouched so free-form CSS works.
func (p Palette) LinkColor(name string, alpha float64, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if e, ok := p.entries[strings.ToLower(name)]; ok {
		return rgba(e.Color, alpha)
	}
	return name
}

// Swatches lists the palette in name order.
func (p Palette) Swatches(alpha float64) []Swatch {
	out := make([]Swatch, 0, len(p.order))
	for _, k := range p.order {
		e := p.entries[k]
		out = append(out, Swatch{Name: e.Name, Color: rgb(e.Color), Transparent: rgba(e.Color, alpha)})
	}
	return out
}

func (p Palette) Len() int { return len(p.entries) }

// Random derives a stable color from seed, so the same label keeps its color
// across refreshes.
func Random(seed string) string {
	h := fnv.New32a()
	h.Write([]byte(seed))
	hue := float64(h.Sum32() % 360)
	return rgb(colorful.Hsv(hue, 0.55, 0.8))
}

// IsConcrete reports whether s parses as a hex, rgb() or rgba() color.
func IsConcrete(s string) bool {
	_, ok := parse(s)
	return ok
}

func parse(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		return c, err == nil
	}
	m := reRGB.FindStringSubmatch(s)
	if m == nil {
		return colorful.Color{}, false
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(m[i+1])
		if err != nil || n > 255 {
			return colorful.Color{}, false
		}
		ch[i] = float64(n) / 255
	}
	if m[4] != "" {
		a, err := strconv.ParseFloat(m[4], 64)
		if err != nil || a > 1 {
			return colorful.Color{}, false
		}
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, true
}

func rgb(c colorful.Color) string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

func rgba(c colorful.Color, alpha float64) string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}
