// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/fountain/internal/catalog"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate level files without running them",
		Long: `Checks each level file against the level JSON Schema, then runs the
semantic checks (format version, unique IDs, references). Exits non-zero if
any file fails.

Useful in CI pipelines to catch level errors early:
  fountain validate levels/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args)
		},
	}
}

func runValidate(cmd *cobra.Command, paths []string) error {
	failed := 0
	for _, path := range paths {
		doc, err := validateFile(path)
		if err != nil {
			failed++
			cmd.Printf("FAIL %s: %s\n", path, catalog.FormatSchemaError(err))
			continue
		}
		cmd.Printf("ok   %s (%d objects, %d triggers, %d steps)\n",
			path, len(doc.Objects), len(doc.Triggers), len(doc.Script))
	}

	if failed > 0 {
		return oops.Code("VALIDATION_FAILED").
			With("failed", failed).
			Errorf("validation failed: %d of %d level files invalid", failed, len(paths))
	}
	return nil
}

func validateFile(path string) (*catalog.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := catalog.ValidateSchema(data); err != nil {
		return nil, err
	}
	return catalog.Parse(data)
}
