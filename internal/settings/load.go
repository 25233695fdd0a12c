package settings

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a flat YAML mapping of settings keys.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return t, nil
}

// Decode reads a flat YAML (or JSON) mapping. Scalar values of any type are
// kept as their text.
func Decode(r io.Reader) (Table, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return Table{}, nil
		}
		return nil, err
	}
	t := make(Table, len(raw))
	for k, v := range raw {
		switch x := v.(type) {
		case nil:
		case string:
			t[k] = x
		case int:
			t[k] = strconv.Itoa(x)
		case float64:
			t[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			t[k] = strconv.FormatBool(x)
		default:
			return nil, fmt.Errorf("key %q: expected a scalar, got %T", k, v)
		}
	}
	return t, nil
}
