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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v2"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Printer renders command results
type Printer struct {
	out    io.Writer
	format string
}

// NewPrinter creates a printer for one of the output formats
func NewPrinter(out io.Writer, format string) *Printer {
	if format == "" {
		format = FormatTable
	}
	return &Printer{out: out, format: format}
}

// Table is a header row followed by data rows
type Table struct {
	Header []string
	Rows   [][]string
}

// AddRow appends a row, formatting each cell with %v
func (t *Table) AddRow(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = cell(c)
	}
	t.Rows = append(t.Rows, row)
}

func cell(v any) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return "<none>"
		}
		return x
	case []string:
		if len(x) == 0 {
			return "<none>"
		}
		return strings.Join(x, ",")
	case *string:
		if x == nil {
			return "<none>"
		}
		return cell(*x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Print writes v in the configured format. table is only built when the
// table format is selected.
func (p *Printer) Print(v any, table func() Table) error {
	switch p.format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	case FormatYAML:
		data, err := toYAML(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = p.out.Write(data)
		return err
	default:
		return p.writeTable(table())
	}
}

func (p *Printer) writeTable(t Table) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// toYAML renders v with the same field names as its JSON form. Going through
// JSON keeps the json tags of the context types; MapSlice keeps field order.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		var doc []yaml.MapSlice
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		if len(doc) == 0 {
			return []byte("[]\n"), nil
		}
		return yaml.Marshal(doc)
	case bytes.HasPrefix(trimmed, []byte("{")):
		var doc yaml.MapSlice
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)
	default:
		return yaml.Marshal(v)
	}
}
