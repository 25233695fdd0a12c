package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MalithGihan/sankey-service/pkg/types"
)

func DetectType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "unknown"
	}
}

// ParsedFile is one uploaded table snapshot.
type ParsedFile struct {
	Name string
	Rows []types.Row
}

// Parse reads r according to the type of name.
func Parse(name string, r io.Reader) (ParsedFile, error) {
	var rows []types.Row
	var err error
	switch DetectType(name) {
	case "csv":
		rows, err = ParseCSV(r)
	case "json":
		rows, err = ParseJSON(r)
	case "yaml":
		rows, err = ParseYAML(r)
	default:
		return ParsedFile{Name: name}, fmt.Errorf("%s: unsupported table format", name)
	}
	if err != nil {
		return ParsedFile{Name: name}, fmt.Errorf("%s: %w", name, err)
	}
	return ParsedFile{Name: name, Rows: rows}, nil
}

// BuildTable merges multiple files into one snapshot (append rows).
func BuildTable(files []ParsedFile) []types.Row {
	var rows []types.Row
	for _, f := range files {
		rows = append(rows, f.Rows...)
	}
	return rows
}

// DefaultTable is the table a fresh editor is seeded with.
func DefaultTable() []types.Row {
	return []types.Row{
		{ColSource: "A", ColTarget: "B", ColValue: "10", ColNodeColor: "rgb(0, 150, 150)", ColLinkColor: "rgba(0, 150, 150, 0.6)"},
		{ColSource: "B", ColTarget: "C", ColValue: "5", ColNodeColor: "rgb(190, 200, 0)", ColLinkColor: "rgba(190, 200, 0, 0.6)"},
		{ColSource: "A", ColTarget: "D", ColValue: "15", ColNodeColor: "rgb(240, 150, 0)", ColLinkColor: "rgba(240, 150, 0, 0.6)"},
	}
}
