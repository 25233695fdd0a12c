package aggregate

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalithGihan/sankey-service/internal/apperr"
	"github.com/MalithGihan/sankey-service/internal/palette"
	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

func rec(src, tgt string, v float64) types.FlowRecord {
	return types.FlowRecord{Source: src, Target: tgt, Value: v}
}

func pct(n int) *int { return &n }

func newTestAggregator() *Aggregator {
	return New(palette.Default(), settings.Defaults())
}

func TestBuildEndToEnd(t *testing.T) {
	res, err := newTestAggregator().Build([]types.FlowRecord{
		rec("A", "B", 10),
		rec("B", "C", 15),
		rec("A", "D", 20),
	})
	require.NoError(t, err)

	require.Len(t, res.Nodes, 4)
	labels := make([]string, len(res.Nodes))
	for i, n := range res.Nodes {
		labels[i] = n.Label
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, labels)

	a := res.Aggregates[0]
	assert.Equal(t, 30.0, a.OutboundTotal)
	assert.Equal(t, 0.0, a.InboundTotal)
	b := res.Aggregates[1]
	assert.Equal(t, 15.0, b.OutboundTotal)
	assert.Equal(t, 10.0, b.InboundTotal)
	assert.Equal(t, 15.0, res.Aggregates[2].InboundTotal)
	assert.Equal(t, 20.0, res.Aggregates[3].InboundTotal)

	assert.Equal(t, "30", res.Nodes[0].DisplayLabel)
	assert.Equal(t, "Out: 15<br>In: 10", res.Nodes[1].DisplayLabel)
	assert.Equal(t, "15", res.Nodes[2].DisplayLabel)
	assert.Equal(t, "20", res.Nodes[3].DisplayLabel)

	require.Len(t, res.Links, 3)
	assert.Equal(t, types.Link{SourceIndex: 0, TargetIndex: 1, Value: 10, Color: "rgba(127, 127, 127, 0.6)"}, res.Links[0])
	assert.Equal(t, 1, res.Links[1].SourceIndex)
	assert.Equal(t, 2, res.Links[1].TargetIndex)
	assert.Equal(t, 3, res.Links[2].TargetIndex)
}

func TestBuildEmpty(t *testing.T) {
	_, err := newTestAggregator().Build(nil)
	assert.ErrorIs(t, err, apperr.ErrNothingToRender)
}

func TestBuildMissingSettingsKey(t *testing.T) {
	for _, key := range []string{settings.KeyDecimalSeparator, settings.KeyThousandsSeparator, settings.KeyTransparency} {
		t.Run(key, func(t *testing.T) {
			tbl := settings.Defaults()
			delete(tbl, key)
			a := New(palette.Default(), tbl)

			_, err := a.Build([]types.FlowRecord{rec("A", "B", 1)})
			var me *apperr.MissingSettingsKeyError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, key, me.Key)
		})
	}
}

func TestDisplayLabelEqualSides(t *testing.T) {
	res, err := newTestAggregator().Build([]types.FlowRecord{
		{Source: "Mine", Target: "Plant", Value: 1200, Unit: "t"},
		{Source: "Plant", Target: "Port", Value: 1200, Unit: "t"},
	})
	require.NoError(t, err)

	plant := res.Nodes[1]
	assert.Equal(t, "Plant", plant.Label)
	assert.Equal(t, "1.200 t", plant.DisplayLabel)
	assert.Equal(t, 1, strings.Count(plant.DisplayLabel, "1.200"))
}

func TestDisplayLabelPercentageUsesMax(t *testing.T) {
	res, err := newTestAggregator().Build([]types.FlowRecord{
		{Source: "A", Target: "B", Value: 10, Percentage: pct(40)},
		{Source: "B", Target: "C", Value: 4, Percentage: pct(15)},
		{Source: "B", Target: "D", Value: 6, Percentage: pct(10)},
	})
	require.NoError(t, err)

	assert.Equal(t, "10 (40%)", res.Nodes[0].DisplayLabel)
	assert.Equal(t, "10 (40%)", res.Nodes[1].DisplayLabel, "out 25% vs in 40%")
	assert.Equal(t, 25.0, res.Aggregates[1].OutboundPercentage)
	assert.Equal(t, 40.0, res.Aggregates[1].InboundPercentage)
	assert.Equal(t, "4 (15%)", res.Nodes[2].DisplayLabel)
}

func TestDisplayLabelWithoutPercentage(t *testing.T) {
	res, err := newTestAggregator().Build([]types.FlowRecord{rec("A", "B", 5)})
	require.NoError(t, err)
	assert.NotContains(t, res.Nodes[0].DisplayLabel, "%")
}

func TestDisplayLabelDecimals(t *testing.T) {
	a := newTestAggregator()
	a.Decimals = 1
	res, err := a.Build([]types.FlowRecord{rec("A", "B", 1234.56)})
	require.NoError(t, err)
	assert.Equal(t, "1.234,6", res.Nodes[0].DisplayLabel)
}

func TestDisplayLabelBareFallback(t *testing.T) {
	f := labelFormat{decimalSep: ",", thousandsSep: "."}
	assert.Equal(t, "Orphan", f.display(types.NodeAggregate{Label: "Orphan"}))
}

func TestNodeColorFirstTargetWins(t *testing.T) {
	res, err := newTestAggregator().Build([]types.FlowRecord{
		{Source: "A", Target: "B", Value: 1, NodeColor: "Teal"},
		{Source: "C", Target: "B", Value: 1, NodeColor: "Orange"},
		{Source: "B", Target: "D", Value: 1, NodeColor: "#112233"},
	})
	require.NoError(t, err)

	byLabel := map[string]types.Node{}
	for _, n := range res.Nodes {
		byLabel[n.Label] = n
	}
	assert.Equal(t, "rgb(0, 150, 150)", byLabel["B"].Color)
	assert.Equal(t, "#112233", byLabel["D"].Color)
	assert.Equal(t, DefaultNodeColor, byLabel["A"].Color, "never a target")
	assert.Equal(t, DefaultNodeColor, byLabel["C"].Color)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `node "B"`)
}

func TestNodeColorSameColorTwiceIsNotAConflict(t *testing.T) {
	res, err := newTestAggregator().Build([]types.FlowRecord{
		{Source: "A", Target: "B", Value: 1, NodeColor: "Teal"},
		{Source: "C", Target: "B", Value: 1, NodeColor: "rgb(0, 150, 150)"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}

func TestUnknownNodeColorFallsBack(t *testing.T) {
	res, err := newTestAggregator().Build([]types.FlowRecord{
		{Source: "A", Target: "B", Value: 1, NodeColor: "Chartreuse"},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultNodeColor, res.Nodes[1].Color)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Chartreuse")
}

func TestRandomFallback(t *testing.T) {
	a := newTestAggregator()
	a.Fallback = FallbackRandom
	res, err := a.Build([]types.FlowRecord{rec("A", "B", 1)})
	require.NoError(t, err)

	assert.Equal(t, palette.Random("A"), res.Nodes[0].Color)
	assert.Equal(t, palette.Random("B"), res.Nodes[1].Color)
	assert.True(t, palette.IsConcrete(res.Nodes[0].Color))

	a.Fallback = "rainbow"
	_, err = a.Build([]types.FlowRecord{rec("A", "B", 1)})
	require.Error(t, err)
}

func TestLinkColors(t *testing.T) {
	a := newTestAggregator()
	a.DefaultLinkColor = "lightgray"
	res, err := a.Build([]types.FlowRecord{
		{Source: "A", Target: "B", Value: 1, LinkColor: "Teal"},
		{Source: "A", Target: "C", Value: 1, LinkColor: "hsl(120, 50%, 50%)"},
		{Source: "A", Target: "D", Value: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "rgba(0, 150, 150, 0.6)", res.Links[0].Color)
	assert.Equal(t, "hsl(120, 50%, 50%)", res.Links[1].Color)
	assert.Equal(t, "lightgray", res.Links[2].Color)
}

func TestBuildInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"A", "B", "C", "D", "E", "F"}

	for round := 0; round < 50; round++ {
		var recs []types.FlowRecord
		for i := 0; i < 1+rng.Intn(20); i++ {
			recs = append(recs, rec(names[rng.Intn(len(names))], names[rng.Intn(len(names))], float64(1+rng.Intn(100))))
		}
		t.Run(fmt.Sprint(round), func(t *testing.T) {
			res, err := newTestAggregator().Build(recs)
			require.NoError(t, err)

			seen := map[string]int{}
			for _, n := range res.Nodes {
				seen[n.Label]++
			}
			for _, r := range recs {
				assert.Equal(t, 1, seen[r.Source])
				assert.Equal(t, 1, seen[r.Target])
			}
			assert.Len(t, seen, len(res.Nodes))

			require.Len(t, res.Links, len(recs))
			for i, l := range res.Links {
				require.GreaterOrEqual(t, l.SourceIndex, 0)
				require.Less(t, l.SourceIndex, len(res.Nodes))
				require.Less(t, l.TargetIndex, len(res.Nodes))
				assert.Equal(t, recs[i].Source, res.Nodes[l.SourceIndex].Label)
				assert.Equal(t, recs[i].Target, res.Nodes[l.TargetIndex].Label)
			}

			again, err := newTestAggregator().Build(recs)
			require.NoError(t, err)
			assert.Equal(t, res, again, "output is deterministic")
		})
	}
}
