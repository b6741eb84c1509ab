package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alchemorsel/mealplanner/internal/domain/stepgraph"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type ioFlags struct {
	input          string
	output         string
	warnDuplicates bool
}

// inputFormat picks the decoder from the flag or the file extension.
// Stdin defaults to JSON.
func inputFormat(flag, path string) (string, error) {
	if flag != "" {
		return normalizeFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return formatJSON, nil
	}
}

func normalizeFormat(f string) (string, error) {
	switch strings.ToLower(f) {
	case "json":
		return formatJSON, nil
	case "yaml", "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", f)
	}
}

func readDocument(path, format string, stdin io.Reader) (stepgraph.Document, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return stepgraph.Document{}, err
		}
		defer f.Close()
		r = f
	}

	var doc stepgraph.Document
	var err error
	if format == formatYAML {
		err = yaml.NewDecoder(r).Decode(&doc)
	} else {
		err = json.NewDecoder(r).Decode(&doc)
	}
	if err != nil && err != io.EOF {
		return stepgraph.Document{}, fmt.Errorf("decode %s document: %w", format, err)
	}
	return doc, nil
}

func writeValue(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
