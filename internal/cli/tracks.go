// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gvplot/gvplot"
	"github.com/gvplot/gvplot/align"
	"github.com/gvplot/gvplot/annot"
	"github.com/gvplot/gvplot/genome"
	"github.com/gvplot/gvplot/render"
	"github.com/gvplot/gvplot/vartab"
)

// tracksOpts holds the command-line flags for the tracks command.
type tracksOpts struct {
	region     string // genomic window, as chr:start-end
	out        string // output SVG file
	width      int    // figure width in pixels; 0 uses the config
	laneHeight int    // height of each lane in pixels
}

// newTracksCmd creates the tracks command, which renders a stacked
// genome view of the config-declared inputs around a region.
func newTracksCmd(configPath *string) *cobra.Command {
	var opts tracksOpts

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Render stacked genome tracks around a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTracks(cmd.Context(), *configPath, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.region, "region", "r", "", "genomic window, as chr:start-end (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "tracks.svg", "output SVG file")
	cmd.Flags().IntVar(&opts.width, "width", 0, "figure width in pixels")
	cmd.Flags().IntVar(&opts.laneHeight, "lane-height", 120, "height of each lane in pixels")
	cobra.CheckErr(cmd.MarkFlagRequired("region"))

	return cmd
}

func runTracks(ctx context.Context, configPath string, opts *tracksOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rg, err := genome.ParseRange(opts.region)
	if err != nil {
		return err
	}
	specs := cfg.Tracks
	if len(specs) == 0 {
		specs = defaultTracks(cfg)
	}
	if len(specs) == 0 {
		return fmt.Errorf("no tracks: declare [[track]] entries or data inputs in the config")
	}

	// Reads are shared by the coverage, reads, and mismatches lanes,
	// so the BAM is queried at most once.
	var (
		reads     []align.Record
		haveReads bool
	)
	loadReads := func() ([]align.Record, error) {
		if haveReads {
			return reads, nil
		}
		if cfg.Data.BAM == "" {
			return nil, fmt.Errorf("track needs an alignment file: set data.bam in the config")
		}
		r, err := align.OpenIndexed(cfg.Data.BAM, cfg.Data.BAI)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		recs, err := r.Query(rg)
		if err != nil && !errors.Is(err, align.ErrNoReads) {
			return nil, err
		}
		logger.Debugf("Query %s: %d reads", rg, len(recs))
		reads, haveReads = recs, true
		return reads, nil
	}

	var tracks []render.Track
	for _, spec := range specs {
		track, err := buildTrack(cfg, spec, rg, loadReads)
		if err != nil {
			return err
		}
		tracks = append(tracks, track)
	}

	width := opts.width
	if width == 0 {
		width = cfg.Output.Width
	}
	var buf bytes.Buffer
	if err := render.Tracks(&buf, rg, width, opts.laneHeight, tracks...); err != nil {
		return err
	}
	if err := os.WriteFile(opts.out, buf.Bytes(), 0o666); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Wrote %s: %d lanes over %s", opts.out, len(tracks), rg))
	return nil
}

// defaultTracks derives a lane per declared data input when the
// config has no explicit track entries.
func defaultTracks(cfg *Config) []TrackConfig {
	var specs []TrackConfig
	if cfg.Data.BAM != "" {
		specs = append(specs, TrackConfig{Kind: "coverage"}, TrackConfig{Kind: "reads"})
	}
	if cfg.Data.Variants != "" {
		specs = append(specs, TrackConfig{Kind: "variants"})
	}
	if cfg.Data.GFF != "" {
		specs = append(specs, TrackConfig{Kind: "genes"})
	}
	return specs
}

func buildTrack(cfg *Config, spec TrackConfig, rg genome.Range, loadReads func() ([]align.Record, error)) (render.Track, error) {
	switch spec.Kind {
	case "coverage":
		recs, err := loadReads()
		if err != nil {
			return render.Track{}, err
		}
		return render.CoverageTrack(align.Coverage(recs, rg), rg), nil

	case "reads":
		recs, err := loadReads()
		if err != nil {
			return render.Track{}, err
		}
		return render.ReadTrack(recs, rg), nil

	case "mismatches":
		if cfg.Data.FASTA == "" {
			return render.Track{}, fmt.Errorf("mismatches track needs a reference: set data.fasta in the config")
		}
		recs, err := loadReads()
		if err != nil {
			return render.Track{}, err
		}
		ref, err := align.ReadReference(cfg.Data.FASTA, rg)
		if err != nil {
			return render.Track{}, err
		}
		track := render.CoverageTrack(align.Mismatches(recs, rg, ref), rg)
		track.Name = "mismatches"
		return track, nil

	case "variants":
		if cfg.Data.Variants == "" {
			return render.Track{}, fmt.Errorf("variants track needs a table: set data.variants in the config")
		}
		tab, err := vartab.ReadCSVFile(cfg.Data.Variants)
		if err != nil {
			return render.Track{}, err
		}
		in, err := vartab.Filter(tab, func(chrom string, start int64) bool {
			return rg.Contains(chrom, start)
		}, "Chrom", "Start")
		if err != nil {
			return render.Track{}, err
		}
		m := gvplot.Mapping{}
		for ch, col := range map[gvplot.Channel]string{
			gvplot.X:     spec.X,
			gvplot.Y:     spec.Y,
			gvplot.Color: spec.Color,
		} {
			if col != "" {
				m[ch] = col
			}
		}
		if len(m) == 0 {
			m = nil
		}
		return render.VariantTrack(in, rg, m), nil

	case "genes":
		if cfg.Data.GFF == "" {
			return render.Track{}, fmt.Errorf("genes track needs an annotation file: set data.gff in the config")
		}
		feats, err := annot.ReadGFFFile(cfg.Data.GFF)
		if err != nil {
			return render.Track{}, err
		}
		ix, err := annot.NewIndex(feats)
		if err != nil {
			return render.Track{}, err
		}
		return render.GeneTrack(annot.Genes(ix.Query(rg)), rg), nil
	}
	// loadConfig validated the kind already.
	return render.Track{}, fmt.Errorf("unknown track kind %q", spec.Kind)
}
