package ingest

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/MalithGihan/sankey-service/internal/apperr"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

var (
	errRequired   = errors.New("value is required")
	errNotNumber  = errors.New("not a number")
	errNotInteger = errors.New("not an integer")
)

// Coerce turns a table snapshot into typed records. Rows with every cell
// blank are what the editor leaves behind after "add row" and are skipped.
// The first bad cell aborts the whole snapshot.
func Coerce(rows []types.Row) ([]types.FlowRecord, error) {
	recs := make([]types.FlowRecord, 0, len(rows))
	for i, raw := range rows {
		row := NormalizeRow(raw)
		if blank(row) {
			continue
		}
		rec, err := coerceRow(i+1, row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, apperr.ErrNothingToRender
	}
	return recs, nil
}

func coerceRow(n int, row types.Row) (types.FlowRecord, error) {
	var rec types.FlowRecord
	for _, c := range []struct {
		col string
		dst *string
	}{{ColSource, &rec.Source}, {ColTarget, &rec.Target}} {
		v := strings.TrimSpace(row[c.col])
		if v == "" {
			return rec, &apperr.CoercionError{Row: n, Column: c.col, Value: row[c.col], Err: errRequired}
		}
		*c.dst = v
	}

	raw := row[ColValue]
	v, err := parseNumber(raw)
	if err != nil {
		return rec, &apperr.CoercionError{Row: n, Column: ColValue, Value: raw, Err: err}
	}
	rec.Value = v

	if raw := strings.TrimSpace(row[ColPercentage]); raw != "" {
		p, err := parseInt(raw)
		if err != nil {
			return rec, &apperr.CoercionError{Row: n, Column: ColPercentage, Value: row[ColPercentage], Err: err}
		}
		rec.Percentage = &p
	}

	rec.Unit = strings.TrimSpace(row[ColUnit])
	rec.NodeColor = strings.TrimSpace(row[ColNodeColor])
	rec.LinkColor = strings.TrimSpace(row[ColLinkColor])
	return rec, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errRequired
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	return f, nil
}

// parseInt accepts "40", "40.0" and "40%" within the int32 range.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if n, err := strconv.Atoi(s); err == nil {
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, errNotInteger
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, errNotInteger
	}
	return int(f), nil
}

func blank(row types.Row) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
