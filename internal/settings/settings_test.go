package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalithGihan/sankey-service/internal/apperr"
)

func TestResolveDefaults(t *testing.T) {
	f, err := Resolve(Defaults())
	require.NoError(t, err)

	assert.Equal(t, ",", f.DecimalSeparator)
	assert.Equal(t, ".", f.ThousandsSeparator)
	assert.Equal(t, 12, f.FontSize)
	assert.Equal(t, 1000, f.FigureWidth)
	assert.Equal(t, 600, f.FigureHeight)
	assert.Equal(t, 15, f.Pad)
	assert.InDelta(t, 0.6, f.Transparency, 1e-9)
	assert.Equal(t, "Arial", f.FontFamily)
}

func TestResolveMissingKeyNamesKey(t *testing.T) {
	for _, key := range Keys {
		t.Run(key, func(t *testing.T) {
			tbl := Defaults()
			delete(tbl, key)

			_, err := Resolve(tbl)
			require.Error(t, err)

			var me *apperr.MissingSettingsKeyError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, key, me.Key)
		})
	}
}

func TestResolveCoercion(t *testing.T) {
	tbl := Defaults()
	tbl[KeyFontSize] = "large"

	_, err := Resolve(tbl)
	var ce *apperr.CoercionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KeyFontSize, ce.Column)

	tbl = Defaults()
	tbl[KeyFigureWidth] = "800.0"
	f, err := Resolve(tbl)
	require.NoError(t, err)
	assert.Equal(t, 800, f.FigureWidth)
}

func TestResolveValidation(t *testing.T) {
	tbl := Defaults()
	tbl[KeyTransparency] = "1.5"

	_, err := Resolve(tbl)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidSetting, apperr.Kind(err))
	assert.Contains(t, err.Error(), "transparency")

	tbl = Defaults()
	tbl[KeyFigureHeight] = "0"
	_, err = Resolve(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "figure_height")
}

func TestSeparatorsKeepWhitespace(t *testing.T) {
	tbl := Defaults()
	tbl[KeyThousandsSeparator] = " "

	dec, th, err := tbl.Separators()
	require.NoError(t, err)
	assert.Equal(t, ",", dec)
	assert.Equal(t, " ", th)
}

func TestUnknown(t *testing.T) {
	tbl := Defaults()
	tbl["colour"] = "red"
	tbl["axis"] = "x"
	assert.Equal(t, []string{"axis", "colour"}, tbl.Unknown())
}

func TestDecode(t *testing.T) {
	doc := `
decimal_separator: ","
thousands_separator: "."
font_size: 14
figure_width: 1200
figure_height: 700
pad: 10
transparency: 0.4
font_family: Helvetica
`
	tbl, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "14", tbl[KeyFontSize])
	assert.Equal(t, "0.4", tbl[KeyTransparency])

	f, err := Resolve(tbl)
	require.NoError(t, err)
	assert.Equal(t, "Helvetica", f.FontFamily)
	assert.Equal(t, 1200, f.FigureWidth)
}

func TestDecodeRejectsNested(t *testing.T) {
	_, err := Decode(strings.NewReader("font:\n  size: 12\n"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pad: 20\nfont_family: Mono\n"), 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Table{KeyPad: "20", KeyFontFamily: "Mono"}, tbl)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
