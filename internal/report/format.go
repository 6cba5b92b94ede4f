// Package report renders store data for the terminal and for export.
package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Format selects how a command prints its result.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an output format flag.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return Format(s), nil
	case "":
		return FormatTable, nil
	default:
		return "", eris.Errorf("report: unknown format %q (table, json, yaml)", s)
	}
}

// Encode writes v as JSON or YAML. Table output is rendered by the Write* functions.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "report: encode json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
	default:
		return eris.Errorf("report: format %q is not an encoding", f)
	}
	return nil
}
