package timers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sandeepkv93/timerd/internal/model"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("timers: unknown export format")

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case ExportJSON, ExportYAML:
		return f, nil
	case "yml":
		return ExportYAML, nil
	case "":
		return ExportJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// ExportHistory writes history verbatim and in order. The JSON form uses the
// same record shape as the stored timerHistory collection.
func ExportHistory(w io.Writer, history []model.CompletedTimer, format ExportFormat) error {
	if history == nil {
		history = []model.CompletedTimer{}
	}
	switch format {
	case ExportJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	case ExportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(history); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
