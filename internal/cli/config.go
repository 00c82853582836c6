// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config names the data inputs and output defaults for gvplot
// commands. All fields are optional; commands report an error when a
// field they need is missing from both the config and their flags.
type Config struct {
	Data   DataConfig    `toml:"data"`
	Output OutputConfig  `toml:"output"`
	Tracks []TrackConfig `toml:"track"`
}

// DataConfig locates the input files.
type DataConfig struct {
	// Variants is a CSV variant table.
	Variants string `toml:"variants"`
	// BAM is a coordinate-sorted alignment file. BAI names its index;
	// when empty the index is searched for next to the BAM.
	BAM string `toml:"bam"`
	BAI string `toml:"bai"`
	// FASTA is the reference sequence, for mismatch tracks.
	FASTA string `toml:"fasta"`
	// GFF is a gene annotation file, for gene tracks.
	GFF string `toml:"gff"`
}

// OutputConfig sets figure defaults that flags may override.
type OutputConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// Format is "svg" or "png", used when an output path has no
	// extension.
	Format string `toml:"format"`
}

// TrackConfig declares one lane of a tracks figure.
type TrackConfig struct {
	// Kind is one of "coverage", "reads", "mismatches", "variants",
	// or "genes".
	Kind string `toml:"kind"`
	// X, Y, and Color override the variant-lane mapping for
	// kind "variants".
	X     string `toml:"x"`
	Y     string `toml:"y"`
	Color string `toml:"color"`
}

var trackKinds = map[string]bool{
	"coverage":   true,
	"reads":      true,
	"mismatches": true,
	"variants":   true,
	"genes":      true,
}

// loadConfig reads the TOML config at path. An empty path yields the
// defaults. Unknown keys and unknown track kinds are errors so typos
// do not silently drop settings.
func loadConfig(path string) (*Config, error) {
	c := new(Config)
	if path != "" {
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if und := md.Undecoded(); len(und) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, und[0].String())
		}
		for _, t := range c.Tracks {
			if !trackKinds[t.Kind] {
				return nil, fmt.Errorf("config %s: unknown track kind %q", path, t.Kind)
			}
		}
	}
	c.applyDefaults()
	if c.Output.Format != "svg" && c.Output.Format != "png" {
		return nil, fmt.Errorf("config %s: unknown output format %q", path, c.Output.Format)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Output.Width == 0 {
		c.Output.Width = 960
	}
	if c.Output.Height == 0 {
		c.Output.Height = 600
	}
	if c.Output.Format == "" {
		c.Output.Format = "svg"
	}
}
