// Package settings reads the flat formatting table the settings editor
// produces. Keys are fixed strings; a key that is read but absent is a
// configuration error for that render.
package settings

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MalithGihan/sankey-service/internal/apperr"
)

const (
	KeyDecimalSeparator   = "decimal_separator"
	KeyThousandsSeparator = "thousands_separator"
	KeyFontSize           = "font_size"
	KeyFigureWidth        = "figure_width"
	KeyFigureHeight       = "figure_height"
	KeyPad                = "pad"
	KeyTransparency       = "transparency"
	KeyFontFamily         = "font_family"
)

// Keys lists every recognised key.
var Keys = []string{
	KeyDecimalSeparator, KeyThousandsSeparator, KeyFontSize, KeyFigureWidth,
	KeyFigureHeight, KeyPad, KeyTransparency, KeyFontFamily,
}

// Table is the raw key → value settings snapshot.
type Table map[string]string

// Formatting is the typed view of a complete Table.
type Formatting struct {
	DecimalSeparator   string  `json:"decimal_separator" validate:"required,max=3"`
	ThousandsSeparator string  `json:"thousands_separator" validate:"max=3"`
	FontSize           int     `json:"font_size" validate:"min=1,max=200"`
	FigureWidth        int     `json:"figure_width" validate:"gt=0"`
	FigureHeight       int     `json:"figure_height" validate:"gt=0"`
	Pad                int     `json:"pad" validate:"gte=0"`
	Transparency       float64 `json:"transparency" validate:"gte=0,lte=1"`
	FontFamily         string  `json:"font_family" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Defaults is the table the settings editor starts with.
func Defaults() Table {
	return Table{
		KeyDecimalSeparator:   ",",
		KeyThousandsSeparator: ".",
		KeyFontSize:           "12",
		KeyFigureWidth:        "1000",
		KeyFigureHeight:       "600",
		KeyPad:                "15",
		KeyTransparency:       "0.6",
		KeyFontFamily:         "Arial",
	}
}

// String returns the raw value. Separators are not trimmed: a space is a
// legitimate thousands separator.
func (t Table) String(key string) (string, error) {
	v, ok := t[key]
	if !ok {
		return "", &apperr.MissingSettingsKeyError{Key: key}
	}
	return v, nil
}

func (t Table) Int(key string) (int, error) {
	v, err := t.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		// editors often hand back whole numbers as "12.0"
		f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, &apperr.CoercionError{Column: key, Value: v, Err: errors.New("not an integer")}
		}
		n = int(f)
	}
	return n, nil
}

func (t Table) Float(key string) (float64, error) {
	v, err := t.String(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, &apperr.CoercionError{Column: key, Value: v, Err: errors.New("not a number")}
	}
	return f, nil
}

// Separators reads only the two keys number formatting needs.
func (t Table) Separators() (decimal, thousands string, err error) {
	if decimal, err = t.String(KeyDecimalSeparator); err != nil {
		return "", "", err
	}
	if thousands, err = t.String(KeyThousandsSeparator); err != nil {
		return "", "", err
	}
	return decimal, thousands, nil
}

// Unknown returns keys in t that are not recognised, sorted.
func (t Table) Unknown() []string {
	known := make(map[string]bool, len(Keys))
	for _, k := range Keys {
		known[k] = true
	}
	var out []string
	for k := range t {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Resolve parses every key of t into a validated Formatting.
func Resolve(t Table) (Formatting, error) {
	var f Formatting
	var err error
	if f.DecimalSeparator, f.ThousandsSeparator, err = t.Separators(); err != nil {
		return Formatting{}, err
	}
	if f.FontSize, err = t.Int(KeyFontSize); err != nil {
		return Formatting{}, err
	}
	if f.FigureWidth, err = t.Int(KeyFigureWidth); err != nil {
		return Formatting{}, err
	}
	if f.FigureHeight, err = t.Int(KeyFigureHeight); err != nil {
		return Formatting{}, err
	}
	if f.Pad, err = t.Int(KeyPad); err != nil {
		return Formatting{}, err
	}
	if f.Transparency, err = t.Float(KeyTransparency); err != nil {
		return Formatting{}, err
	}
	if f.FontFamily, err = t.String(KeyFontFamily); err != nil {
		return Formatting{}, err
	}
	f.FontFamily = strings.TrimSpace(f.FontFamily)

	if err := validate.Struct(f); err != nil {
		return Formatting{}, &apperr.InvalidSettingsError{Err: describe(err)}
	}
	return f, nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
