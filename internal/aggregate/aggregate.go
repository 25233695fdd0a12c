// Package aggregate turns coerced flow records into the finalized node and
// link lists the renderer consumes. It is a pure transform: the same records,
// palette and settings always give the same result, node order included.
package aggregate

import (
	"fmt"
	"math"
	"strconv"

	"github.com/MalithGihan/sankey-service/internal/apperr"
	"github.com/MalithGihan/sankey-service/internal/numfmt"
	"github.com/MalithGihan/sankey-service/internal/palette"
	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

// Fallback selects the color given to nodes with no usable declared color.
type Fallback string

const (
	FallbackDefault Fallback = "default"
	FallbackRandom  Fallback = "random"
)

const DefaultNodeColor = "gray"

type Aggregator struct {
	Palette  palette.Palette
	Settings settings.Table

	DefaultNodeColor string
	// DefaultLinkColor is used for links with no color; when empty a gray
	// at the configured transparency is used.
	DefaultLinkColor string
	Fallback         Fallback
	// Decimals is the number of fraction digits shown in labels.
	Decimals int
}

func New(p palette.Palette, t settings.Table) *Aggregator {
	return &Aggregator{
		Palette:          p,
		Settings:         t,
		DefaultNodeColor: DefaultNodeColor,
		Fallback:         FallbackDefault,
	}
}

// Build runs the full aggregation. Any error aborts the refresh; no partial
// result is returned.
func (a *Aggregator) Build(recs []types.FlowRecord) (types.Result, error) {
	if len(recs) == 0 {
		return types.Result{}, apperr.ErrNothingToRender
	}
	dec, thou, err := a.Settings.Separators()
	if err != nil {
		return types.Result{}, err
	}
	alpha, err := a.Settings.Float(settings.KeyTransparency)
	if err != nil {
		return types.Result{}, err
	}
	switch a.Fallback {
	case "", FallbackDefault, FallbackRandom:
	default:
		return types.Result{}, fmt.Errorf("unknown color fallback %q", a.Fallback)
	}

	nodes := newNodeSet()
	for _, r := range recs {
		nodes.add(r.Source)
		nodes.add(r.Target)
	}

	aggs := totals(nodes, recs)
	colors, warnings := a.nodeColors(nodes, recs)

	lf := labelFormat{decimals: a.Decimals, decimalSep: dec, thousandsSep: thou}
	res := types.Result{
		Nodes:      make([]types.Node, nodes.len()),
		Links:      make([]types.Link, 0, len(recs)),
		Aggregates: aggs,
		Warnings:   warnings,
	}
	for i, label := range nodes.labels {
		res.Nodes[i] = types.Node{
			Label:        label,
			DisplayLabel: lf.display(aggs[i]),
			Color:        colors[i],
		}
	}

	defLink := a.DefaultLinkColor
	if defLink == "" {
		defLink = "rgba(127, 127, 127, " + strconv.FormatFloat(alpha, 'f', -1, 64) + ")"
	}
	for _, r := range recs {
		res.Links = append(res.Links, types.Link{
			SourceIndex: nodes.index[r.Source],
			TargetIndex: nodes.index[r.Target],
			Value:       r.Value,
			Color:       a.Palette.LinkColor(r.LinkColor, alpha, defLink),
		})
	}
	return res, nil
}

func totals(nodes *nodeSet, recs []types.FlowRecord) []types.NodeAggregate {
	aggs := make([]types.NodeAggregate, nodes.len())
	for i, l := range nodes.labels {
		aggs[i].Label = l
	}
	for _, r := range recs {
		out := &aggs[nodes.index[r.Source]]
		out.OutboundTotal += r.Value
		out.HasOutbound = true

		in := &aggs[nodes.index[r.Target]]
		in.InboundTotal += r.Value
		in.HasInbound = true

		if r.Percentage != nil {
			out.OutboundPercentage += float64(*r.Percentage)
			in.InboundPercentage += float64(*r.Percentage)
			out.HasPercentage = true
			in.HasPercentage = true
		}
		if r.Unit != "" {
			if out.Unit == "" {
				out.Unit = r.Unit
			}
			if in.Unit == "" {
				in.Unit = r.Unit
			}
		}
	}
	return aggs
}

// nodeColors gives each node the color declared by the first record that
// targets it. Nodes never targeted, or whose color is not resolvable, get the
// fallback. Later records declaring a different color are reported, not
// applied.
func (a *Aggregator) nodeColors(nodes *nodeSet, recs []types.FlowRecord) ([]string, []string) {
	colors := make([]string, nodes.len())
	declared := make([]string, nodes.len())
	var warnings []string

	for n, r := range recs {
		if r.NodeColor == "" {
			continue
		}
		i := nodes.index[r.Target]
		if declared[i] == "" {
			declared[i] = r.NodeColor
			resolved := a.Palette.Concrete(r.NodeColor, "")
			if resolved == "" {
				warnings = append(warnings, fmt.Sprintf("row %d: unknown color %q for node %q, using fallback", n+1, r.NodeColor, r.Target))
				resolved = a.fallback(r.Target)
			}
			colors[i] = resolved
			continue
		}
		if a.Palette.Concrete(r.NodeColor, r.NodeColor) != a.Palette.Concrete(declared[i], declared[i]) {
			warnings = append(warnings, fmt.Sprintf("row %d: node %q already colored %q, ignoring %q", n+1, r.Target, declared[i], r.NodeColor))
		}
	}
	for i, l := range nodes.labels {
		if colors[i] == "" {
			colors[i] = a.fallback(l)
		}
	}
	return colors, warnings
}

func (a *Aggregator) fallback(label string) string {
	if a.Fallback == FallbackRandom {
		return palette.Random(label)
	}
	if a.DefaultNodeColor == "" {
		return DefaultNodeColor
	}
	return a.DefaultNodeColor
}

type labelFormat struct {
	decimals     int
	decimalSep   string
	thousandsSep string
}

func (f labelFormat) number(v float64) string {
	return numfmt.Format(v, f.decimals, f.decimalSep, f.thousandsSep)
}

func (f labelFormat) total(v float64, unit string) string {
	s := f.number(v)
	if unit != "" {
		s += " " + unit
	}
	return s
}

// display picks the node label text. Percentages are annotated with the
// larger of the two sides, so a pass-through node is not double counted.
func (f labelFormat) display(agg types.NodeAggregate) string {
	var s string
	switch {
	case agg.HasOutbound && agg.HasInbound && sameTotal(agg.OutboundTotal, agg.InboundTotal):
		s = f.total(agg.OutboundTotal, agg.Unit)
	case agg.HasOutbound && agg.HasInbound:
		s = "Out: " + f.total(agg.OutboundTotal, agg.Unit) + "<br>In: " + f.total(agg.InboundTotal, agg.Unit)
	case agg.HasOutbound:
		s = f.total(agg.OutboundTotal, agg.Unit)
	case agg.HasInbound:
		s = f.total(agg.InboundTotal, agg.Unit)
	default:
		return agg.Label
	}
	if agg.HasPercentage {
		p := math.Max(agg.OutboundPercentage, agg.InboundPercentage)
		s += " (" + numfmt.Format(p, 0, f.decimalSep, f.thousandsSep) + "%)"
	}
	return s
}

func sameTotal(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
