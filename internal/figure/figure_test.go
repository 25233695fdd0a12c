package figure

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

func sampleResult() types.Result {
	return types.Result{
		Nodes: []types.Node{
			{Label: "A", DisplayLabel: "30", Color: "gray"},
			{Label: "B", DisplayLabel: "B", Color: "rgb(0, 150, 150)"},
		},
		Links: []types.Link{{SourceIndex: 0, TargetIndex: 1, Value: 30, Color: "rgba(0, 150, 150, 0.6)"}},
	}
}

func formatting(t *testing.T) settings.Formatting {
	f, err := settings.Resolve(settings.Defaults())
	require.NoError(t, err)
	return f
}

func TestBuild(t *testing.T) {
	fig := Build(sampleResult(), formatting(t), Style{Title: " Energy "})

	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Equal(t, "sankey", tr.Type)
	assert.Equal(t, 15, tr.Node.Pad)
	assert.Equal(t, nodeThickness, tr.Node.Thickness)
	assert.Equal(t, []string{"A<br>30", "B"}, tr.Node.Label)
	assert.Equal(t, []string{"A", "B"}, tr.Node.CustomData)
	assert.Equal(t, []string{"gray", "rgb(0, 150, 150)"}, tr.Node.Color)
	assert.Equal(t, []int{0}, tr.Link.Source)
	assert.Equal(t, []int{1}, tr.Link.Target)
	assert.Equal(t, []float64{30}, tr.Link.Value)

	assert.Equal(t, "Energy", fig.Layout.Title.Text)
	assert.Equal(t, Font{Family: "Arial", Size: 12}, fig.Layout.Font)
	assert.Equal(t, 1000, fig.Layout.Width)
	assert.Equal(t, 600, fig.Layout.Height)
	assert.Equal(t, "white", fig.Layout.PaperBgColor)
	assert.Equal(t, defaultMargin, fig.Layout.Margin)
}

func TestSanitize(t *testing.T) {
	in := &Margin{L: -5, R: 1, T: 2, B: 3}
	st := Sanitize(Style{Background: "black", Margin: in})
	assert.Equal(t, "black", st.Background)
	assert.Equal(t, Margin{L: 0, R: 1, T: 2, B: 3}, *st.Margin)
	assert.Equal(t, -5, in.L, "caller margin untouched")
}

func TestExportJSON(t *testing.T) {
	res := sampleResult()
	fig := Build(res, formatting(t), Style{})

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatJSON, fig, res))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	layout := doc["layout"].(map[string]any)
	assert.Equal(t, "white", layout["paper_bgcolor"])
	data := doc["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "sankey", data[0].(map[string]any)["type"])
}

func TestExportCSV(t *testing.T) {
	res := sampleResult()
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FormatCSV, Figure{}, res))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "kind,index,label,display_label,color,source,target,value", lines[0])
	assert.Equal(t, "node,0,A,30,gray,,,", lines[1])
	assert.Equal(t, `link,0,,,"rgba(0, 150, 150, 0.6)",A,B,30`, lines[3])
}

func TestExportUnknownFormat(t *testing.T) {
	err := Export(&bytes.Buffer{}, "svg", Figure{}, types.Result{})
	require.Error(t, err)
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
	assert.Equal(t, "application/json", ContentType("svg"))
}
