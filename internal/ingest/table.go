package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MalithGihan/sankey-service/pkg/types"
)

// Canonical column names, as the editor shows them.
const (
	ColSource     = "Source"
	ColTarget     = "Target"
	ColValue      = "Value"
	ColPercentage = "Percentage"
	ColUnit       = "Unit"
	ColNodeColor  = "Node Color"
	ColLinkColor  = "Link Color"
)

var columnAliases = map[string]string{
	"source":            ColSource,
	"target":            ColTarget,
	"value":             ColValue,
	"percentage":        ColPercentage,
	"percent":           ColPercentage,
	"unit":              ColUnit,
	"node color":        ColNodeColor,
	"nodecolor":         ColNodeColor,
	"target node color": ColNodeColor,
	"link color":        ColLinkColor,
	"linkcolor":         ColLinkColor,
}

// Canonical maps a header to its canonical column name; unknown headers are
// returned trimmed.
func Canonical(header string) string {
	h := strings.TrimSpace(header)
	if c, ok := columnAliases[headerKey(h)]; ok {
		return c
	}
	return h
}

func headerKey(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(h)), " "))
}

// outranks reports whether header h should fill column c in place of prev
// when both map to c. A header spelling the column name itself beats an
// alias; otherwise the smaller header wins.
func outranks(h, prev, c string) bool {
	own := strings.ToLower(c)
	hOwn, prevOwn := headerKey(h) == own, headerKey(prev) == own
	if hOwn != prevOwn {
		return hOwn
	}
	return h < prev
}

// NormalizeRow rewrites keys to canonical column names. When several keys
// land on the same column the winner is chosen by outranks, never by map
// order.
func NormalizeRow(in map[string]string) types.Row {
	out := make(types.Row, len(in))
	from := make(map[string]string, len(in))
	for k, v := range in {
		c := Canonical(k)
		if prev, ok := from[c]; ok && !outranks(k, prev, c) {
			continue
		}
		out[c] = v
		from[c] = k
	}
	return out
}

// ParseCSV reads a header row followed by data rows.
func ParseCSV(r io.Reader) ([]types.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(header))
	winner := make(map[string]int, len(header))
	for i, h := range header {
		header[i] = strings.TrimPrefix(h, "\ufeff")
		cols[i] = Canonical(header[i])
		if j, ok := winner[cols[i]]; ok && !outranks(header[i], header[j], cols[i]) {
			continue
		}
		winner[cols[i]] = i
	}

	var rows []types.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > len(cols) {
			return nil, fmt.Errorf("row %d: %d cells for %d columns", len(rows)+1, len(rec), len(cols))
		}
		row := make(types.Row, len(cols))
		for i, c := range cols {
			if i < len(rec) && winner[c] == i {
				row[c] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseJSON reads a list of objects. Cells may be strings, numbers or null.
func ParseJSON(r io.Reader) ([]types.Row, error) {
	var raw []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return fromMaps(raw)
}

// ParseYAML reads a sequence of mappings.
func ParseYAML(r io.Reader) ([]types.Row, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return fromMaps(raw)
}

// RowsFromMaps converts decoded JSON objects into rows.
func RowsFromMaps(raw []map[string]any) ([]types.Row, error) { return fromMaps(raw) }

func fromMaps(raw []map[string]any) ([]types.Row, error) {
	rows := make([]types.Row, 0, len(raw))
	for i, m := range raw {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cells := make(map[string]string, len(m))
		for _, k := range keys {
			s, err := cellText(m[k])
			if err != nil {
				return nil, fmt.Errorf("row %d: column %q: %w", i+1, k, err)
			}
			cells[k] = s
		}
		rows = append(rows, NormalizeRow(cells))
	}
	return rows, nil
}

func cellText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("expected a scalar cell, got %T", v)
	}
}
