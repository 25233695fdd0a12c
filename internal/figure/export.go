package figure

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/MalithGihan/sankey-service/pkg/types"
)

// Formats the service can write itself. Image export belongs to the renderer.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// Export writes the figure (json) or a flat node/link listing (csv).
func Export(w io.Writer, format string, fig Figure, res types.Result) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fig)
	case FormatCSV:
		return writeCSV(w, res)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func writeCSV(w io.Writer, res types.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "index", "label", "display_label", "color", "source", "target", "value"}); err != nil {
		return err
	}
	for i, n := range res.Nodes {
		if err := cw.Write([]string{"node", strconv.Itoa(i), n.Label, n.DisplayLabel, n.Color, "", "", ""}); err != nil {
			return err
		}
	}
	for i, l := range res.Links {
		row := []string{
			"link", strconv.Itoa(i), "", "", l.Color,
			res.Nodes[l.SourceIndex].Label, res.Nodes[l.TargetIndex].Label,
			strconv.FormatFloat(l.Value, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
