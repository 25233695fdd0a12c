// Package figure shapes an aggregation result into the document the
// external Sankey renderer takes: one sankey trace plus a flat layout record.
package figure

import (
	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

const (
	nodeThickness = 20
	nodeLineColor = "black"
	nodeLineWidth = 0.5
)

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type        string   `json:"type"`
	Orientation string   `json:"orientation"`
	Node        NodeSpec `json:"node"`
	Link        LinkSpec `json:"link"`
}

type NodeSpec struct {
	Pad        int      `json:"pad"`
	Thickness  int      `json:"thickness"`
	Line       Line     `json:"line"`
	Label      []string `json:"label"`
	Color      []string `json:"color"`
	CustomData []string `json:"customdata"`
}

type Line struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

type LinkSpec struct {
	Source []int     `json:"source"`
	Target []int     `json:"target"`
	Value  []float64 `json:"value"`
	Color  []string  `json:"color"`
}

type Layout struct {
	Title        Title  `json:"title"`
	Font         Font   `json:"font"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PaperBgColor string `json:"paper_bgcolor"`
	PlotBgColor  string `json:"plot_bgcolor"`
	Margin       Margin `json:"margin"`
}

type Title struct {
	Text string `json:"text"`
}

type Font struct {
	Family string `json:"family"`
	Size   int    `json:"size"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Style carries the presentation choices that are not in the settings table.
type Style struct {
	Title      string  `json:"title,omitempty"`
	Background string  `json:"background,omitempty"`
	Margin     *Margin `json:"margin,omitempty"`
}

// Build lays the result out for the renderer. Node labels show the bare
// label with the aggregated total underneath.
func Build(res types.Result, f settings.Formatting, st Style) Figure {
	st = Sanitize(st)

	node := NodeSpec{
		Pad:        f.Pad,
		Thickness:  nodeThickness,
		Line:       Line{Color: nodeLineColor, Width: nodeLineWidth},
		Label:      make([]string, 0, len(res.Nodes)),
		Color:      make([]string, 0, len(res.Nodes)),
		CustomData: make([]string, 0, len(res.Nodes)),
	}
	for _, n := range res.Nodes {
		node.Label = append(node.Label, NodeText(n))
		node.Color = append(node.Color, n.Color)
		node.CustomData = append(node.CustomData, n.Label)
	}

	link := LinkSpec{
		Source: make([]int, 0, len(res.Links)),
		Target: make([]int, 0, len(res.Links)),
		Value:  make([]float64, 0, len(res.Links)),
		Color:  make([]string, 0, len(res.Links)),
	}
	for _, l := range res.Links {
		link.Source = append(link.Source, l.SourceIndex)
		link.Target = append(link.Target, l.TargetIndex)
		link.Value = append(link.Value, l.Value)
		link.Color = append(link.Color, l.Color)
	}

	return Figure{
		Data: []Trace{{Type: "sankey", Orientation: "h", Node: node, Link: link}},
		Layout: Layout{
			Title:        Title{Text: st.Title},
			Font:         Font{Family: f.FontFamily, Size: f.FontSize},
			Width:        f.FigureWidth,
			Height:       f.FigureHeight,
			PaperBgColor: st.Background,
			PlotBgColor:  st.Background,
			Margin:       *st.Margin,
		},
	}
}

// NodeText is the text drawn next to a node.
func NodeText(n types.Node) string {
	if n.DisplayLabel == "" || n.DisplayLabel == n.Label {
		return n.Label
	}
	return n.Label + "<br>" + n.DisplayLabel
}
