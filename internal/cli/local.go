/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/projectbeskar/smctl/internal/mapping"
	"github.com/projectbeskar/smctl/internal/version"
)

type outputParams struct {
	Format string `validate:"omitempty,oneof=table json yaml"`
}

// setupLocal prepares commands that never contact the endpoint: only the
// printer and the mapping registry are built
func (a *App) setupLocal(cmd *cobra.Command, _ []string) error {
	format := a.output
	if format == "" && a.opts.Config != nil {
		format = a.opts.Config.Output.Format
	}
	if err := checkParams(outputParams{Format: format}); err != nil {
		return err
	}
	a.printer = NewPrinter(cmd.OutOrStdout(), format)

	registry, err := mapping.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize mappings: %w", err)
	}
	a.registry = registry
	return nil
}

// mappingRow is the printable form of a mapping.Pair
type mappingRow struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (a *App) mappingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "mappings",
		Short:             "List the registered type conversions",
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupLocal,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pairs := a.registry.Pairs()
			rows := make([]mappingRow, 0, len(pairs))
			for _, p := range pairs {
				source, target, _ := strings.Cut(p.String(), " -> ")
				rows = append(rows, mappingRow{Source: source, Target: target})
			}
			return a.printer.Print(rows, func() Table {
				t := Table{Header: []string{"SOURCE", "TARGET"}}
				for _, r := range rows {
					t.AddRow(r.Source, r.Target)
				}
				return t
			})
		},
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupLocal,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			return a.printer.Print(info, func() Table {
				t := Table{Header: []string{"VERSION", "GIT SHA", "GO", "PLATFORM"}}
				t.AddRow(info.Version, info.GitSHA, info.GoVersion, info.Platform)
				return t
			})
		},
	}
}
