// sankeyctl renders a flow table file to a figure document without the
// HTTP service.
//
// Usage:
//
//	sankeyctl render flows.csv --settings settings.yaml --format json
//	sankeyctl palette
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/MalithGihan/sankey-service/internal/figure"
	"github.com/MalithGihan/sankey-service/internal/ingest"
	"github.com/MalithGihan/sankey-service/internal/palette"
	"github.com/MalithGihan/sankey-service/internal/render"
	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sankeyctl",
		Short:         "Aggregate flow tables into Sankey figures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd(), newPaletteCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	var (
		settingsPath string
		format       string
		output       string
		opts         render.Options
	)
	cmd := &cobra.Command{
		Use:   "render [table-file]",
		Short: "Render a csv/json/yaml table; with no file, the seed table is used",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readRows(args)
			if err != nil {
				return err
			}
			tbl := settings.Defaults()
			if settingsPath != "" {
				if tbl, err = settings.LoadFile(settingsPath); err != nil {
					return err
				}
			}
			out, err := render.Run(rows, tbl, palette.Default(), opts)
			if err != nil {
				return err
			}
			for _, w := range out.Result.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}

			export := func(w io.Writer) error {
				return figure.Export(w, format, out.Figure, out.Result)
			}
			if output == "" {
				return export(cmd.OutOrStdout())
			}
			return writeFile(output, export)
		},
	}
	cmd.Flags().StringVar(&settingsPath, "settings", "", "YAML settings table (replaces the defaults)")
	cmd.Flags().StringVarP(&format, "format", "f", figure.FormatJSON, "output format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&opts.Fallback, "fallback", "default", "color for uncolored nodes: default or random")
	cmd.Flags().IntVar(&opts.Decimals, "decimals", 0, "fraction digits in node labels")
	cmd.Flags().StringVar(&opts.Title, "title", "", "figure title")
	cmd.Flags().StringVar(&opts.Background, "background", "", "figure background color")
	return cmd
}

func readRows(args []string) ([]types.Row, error) {
	if len(args) == 0 {
		return ingest.DefaultTable(), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ingest.Parse(args[0], f)
	if err != nil {
		return nil, err
	}
	return p.Rows, nil
}

// writeFile creates path and fills it with write. The file is removed
// when write fails, so a failed render never leaves a partial document.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return write(f)
}

func newPaletteCmd() *cobra.Command {
	var alpha float64
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "List the stock color names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, s := range palette.Default().Swatches(alpha) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-20s %s\n", s.Name, s.Color, s.Transparent)
			}
		},
	}
	cmd.Flags().Float64Var(&alpha, "alpha", 0.6, "alpha for the transparent variant")
	return cmd
}
