// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

// Command gen-schema generates the zone table and share request JSON Schema files.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/venueshare/venueshare/internal/housing"
	"github.com/venueshare/venueshare/internal/venue"
)

// schemas maps output file names to their generators.
var schemas = []struct {
	name     string
	generate func() ([]byte, error)
}{
	{"zones.schema.json", housing.GenerateZoneTableSchema},
	{"share-request.schema.json", venue.GenerateShareRequestSchema},
}

func main() {
	outDir := "schemas"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := generate(outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func generate(outDir string) error {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	for _, s := range schemas {
		data, err := s.generate()
		if err != nil {
			return fmt.Errorf("generating %s: %w", s.name, err)
		}
		outPath := filepath.Join(outDir, s.name)
		if err := os.WriteFile(outPath, append(data, '\n'), 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Printf("Generated %s\n", outPath)
	}
	return nil
}
