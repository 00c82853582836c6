// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/spf13/cobra"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/render"
	"github.com/gvplot/gvplot/vartab"
)

// plotOpts holds the command-line flags for the plot command.
type plotOpts struct {
	csv     string   // variant CSV path; falls back to config data.variants
	geom    string   // geometry name: point, line, area, bar, box, violin, density, rect, text
	x       string   // column bound to x
	y       string   // column bound to y
	color   string   // column bound to stroke color
	fill    string   // column bound to fill color
	shape   string   // column bound to point shape
	facet   string   // facet column, or "row,col" for a grid
	wrap    int      // wrap facet panels into at most this many columns
	filters []string // row filters, each "col=v1,v2"
	out     string   // output file; extension picks the format
	width   int      // figure width in pixels; 0 uses the config
	height  int      // figure height in pixels; 0 uses the config
}

// newPlotCmd creates the plot command, which reads a variant table and
// renders a single figure described entirely by flags.
func newPlotCmd(configPath *string) *cobra.Command {
	var opts plotOpts

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a figure from a variant table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd.Context(), *configPath, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.csv, "csv", "", "variant CSV file (default: config data.variants)")
	cmd.Flags().StringVar(&opts.geom, "geom", "point", "geometry: point, line, area, bar, box, violin, density, rect, text")
	cmd.Flags().StringVar(&opts.x, "x", "", "column bound to x")
	cmd.Flags().StringVar(&opts.y, "y", "", "column bound to y")
	cmd.Flags().StringVar(&opts.color, "color", "", "column bound to color")
	cmd.Flags().StringVar(&opts.fill, "fill", "", "column bound to fill")
	cmd.Flags().StringVar(&opts.shape, "shape", "", "column bound to point shape")
	cmd.Flags().StringVar(&opts.facet, "facet", "", "facet column, or \"row,col\" for a grid")
	cmd.Flags().IntVar(&opts.wrap, "wrap", 0, "wrap facet panels into at most this many columns")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "keep rows where col is in values, as col=v1,v2 (repeatable)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "plot.svg", "output file (.svg or .png)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "figure width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "figure height in pixels")

	return cmd
}

func runPlot(ctx context.Context, configPath string, opts *plotOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	csv := opts.csv
	if csv == "" {
		csv = cfg.Data.Variants
	}
	if csv == "" {
		return fmt.Errorf("no variant table: pass --csv or set data.variants in the config")
	}

	tab, err := vartab.ReadCSVFile(csv)
	if err != nil {
		return err
	}
	logger.Debugf("Read %s: %d rows, %d columns", csv, tab.Len(), len(tab.Columns()))

	var data table.Grouping = tab
	for _, spec := range opts.filters {
		col, values, err := parseFilter(spec)
		if err != nil {
			return err
		}
		if data, err = vartab.FilterIn(data, col, values...); err != nil {
			return err
		}
	}

	geom, err := gvplot.ParseGeom(opts.geom)
	if err != nil {
		return err
	}
	m := gvplot.Mapping{}
	for ch, col := range map[gvplot.Channel]string{
		gvplot.X:     opts.x,
		gvplot.Y:     opts.y,
		gvplot.Color: opts.color,
		gvplot.Fill:  opts.fill,
		gvplot.Shape: opts.shape,
	} {
		if col != "" {
			m[ch] = col
		}
	}

	plot := gvplot.New(data, m).Add(gvplot.Layer{Geom: geom})
	if opts.facet != "" {
		facet, err := parseFacet(opts.facet, opts.wrap)
		if err != nil {
			return err
		}
		plot.Add(facet)
	}
	if err := plot.Err(); err != nil {
		return err
	}

	path, err := writeFigure(cfg, opts.out, opts.width, opts.height, plot)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Wrote %s", path))
	return nil
}

// parseFilter splits a --filter spec of the form "col=v1,v2".
func parseFilter(spec string) (col string, values []string, err error) {
	col, rest, ok := strings.Cut(spec, "=")
	if !ok || col == "" || rest == "" {
		return "", nil, fmt.Errorf("bad filter %q: want col=v1,v2", spec)
	}
	return col, strings.Split(rest, ","), nil
}

// parseFacet builds a facet from a --facet spec: a single column
// wraps panels in reading order, and "row,col" lays out a grid.
func parseFacet(spec string, wrap int) (gvplot.Facet, error) {
	row, col, grid := strings.Cut(spec, ",")
	if grid {
		if row == "" || col == "" {
			return gvplot.Facet{}, fmt.Errorf("bad facet %q: want col or row,col", spec)
		}
		return gvplot.Facet{Row: row, Col: col}, nil
	}
	return gvplot.Facet{Col: spec, Wrap: true, Cols: wrap}, nil
}

// writeFigure renders plot into the file at out, choosing the format
// by extension. A path without an extension gets the config's format
// appended. The figure is rendered fully in memory, so a render error
// leaves no partial file behind. It returns the path written.
func writeFigure(cfg *Config, out string, width, height int, plot *gvplot.Plot) (string, error) {
	if width == 0 {
		width = cfg.Output.Width
	}
	if height == 0 {
		height = cfg.Output.Height
	}

	ext := filepath.Ext(out)
	if ext == "" {
		ext = "." + cfg.Output.Format
		out += ext
	}
	var buf bytes.Buffer
	switch ext {
	case ".svg":
		if err := render.SVG(&buf, plot, width, height); err != nil {
			return "", err
		}
	case ".png":
		if err := render.PNG(&buf, plot, width, height); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown output format %q: want .svg or .png", ext)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o666); err != nil {
		return "", err
	}
	return out, nil
}
