// Package dump writes fetched forum records to disk as JSON or YAML.
package dump

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const indent = "    "

// ParseFormat accepts json, yaml or yml in any case. Blank means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("unsupported dump format %q", s)
	}
}

// Ext is the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// Encode writes v to w. JSON keeps non-ASCII text and HTML characters unescaped
// and indents by four spaces.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", indent)
		return errors.Wrap(enc.Encode(v), "encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(len(indent))
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return errors.Wrap(enc.Close(), "encode yaml")
	default:
		return errors.Errorf("unsupported dump format %q", f)
	}
}

// WriteFile encodes v into dir/name.<ext>, creating dir when missing, and
// returns the written path. A file that fails to encode is removed.
func WriteFile(dir, name string, f Format, v any) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create dump dir")
	}

	path := filepath.Join(dir, name+"."+f.Ext())
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create dump file")
	}

	if err := Encode(file, f, v); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", errors.Wrap(err, "close dump file")
	}
	return path, nil
}
