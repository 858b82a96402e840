// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Command gen-schema writes the JSON Schema files for world files and
// generation payloads.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/schema"
	"github.com/wyrdmud/wyrd/internal/world"
)

func main() {
	paths, err := writeSchemas("schemas")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schemas: %v\n", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Printf("Generated %s\n", p)
	}
}

func writeSchemas(dir string) ([]string, error) {
	validators := append([]*schema.Validator{world.Schema()}, generation.Schemas()...)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	paths := make([]string, 0, len(validators))
	for _, v := range validators {
		doc, err := v.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", v.Name(), err)
		}
		outPath := filepath.Join(dir, v.Name()+".schema.json")
		if err := os.WriteFile(outPath, doc, 0o600); err != nil {
			return nil, fmt.Errorf("write %s: %w", outPath, err)
		}
		paths = append(paths, outPath)
	}
	return paths, nil
}
