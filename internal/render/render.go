// Package render runs one full refresh: coerce the table snapshot,
// aggregate, and lay out the figure. A refresh either fully succeeds or
// returns the first error.
package render

import (
	"fmt"
	"strconv"

	"github.com/MalithGihan/sankey-service/internal/aggregate"
	"github.com/MalithGihan/sankey-service/internal/figure"
	"github.com/MalithGihan/sankey-service/internal/ingest"
	"github.com/MalithGihan/sankey-service/internal/palette"
	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

type Options struct {
	Fallback         string `json:"fallback,omitempty"`
	Decimals         int    `json:"decimals,omitempty"`
	Title            string `json:"title,omitempty"`
	Background       string `json:"background,omitempty"`
	DefaultNodeColor string `json:"defaultNodeColor,omitempty"`
	DefaultLinkColor string `json:"defaultLinkColor,omitempty"`
}

type Output struct {
	Figure figure.Figure `json:"figure"`
	Result types.Result  `json:"result"`
}

func Run(rows []types.Row, tbl settings.Table, pal palette.Palette, opts Options) (Output, error) {
	recs, err := ingest.Coerce(rows)
	if err != nil {
		return Output{}, err
	}

	agg := aggregate.New(pal, tbl)
	agg.Decimals = opts.Decimals
	if opts.Fallback != "" {
		agg.Fallback = aggregate.Fallback(opts.Fallback)
	}
	if opts.DefaultNodeColor != "" {
		agg.DefaultNodeColor = opts.DefaultNodeColor
	}
	agg.DefaultLinkColor = opts.DefaultLinkColor

	res, err := agg.Build(recs)
	if err != nil {
		return Output{}, err
	}
	f, err := settings.Resolve(tbl)
	if err != nil {
		return Output{}, err
	}
	fig := figure.Build(res, f, figure.Style{Title: opts.Title, Background: opts.Background})
	return Output{Figure: fig, Result: res}, nil
}

// TableFrom converts decoded JSON/YAML settings values to a Table.
func TableFrom(m map[string]any) (settings.Table, error) {
	t := make(settings.Table, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case string:
			t[k] = x
		case float64:
			t[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case fmt.Stringer: // json.Number
			t[k] = x.String()
		default:
			return nil, fmt.Errorf("settings key %q: expected a string or number, got %T", k, v)
		}
	}
	return t, nil
}
