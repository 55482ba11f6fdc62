package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer persists a frame in one file format. Writes always truncate.
type Writer interface {
	Write(f *Frame, path string) error
	Extension() string
}

// Formats lists the supported format names.
var Formats = []string{"csv", "parquet", "json"}

// NewWriter returns the writer for format (csv, parquet, json).
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVWriter{}, nil
	case "parquet":
		return ParquetWriter{}, nil
	case "json":
		return JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (use: %s)", format, strings.Join(Formats, ", "))
	}
}

// Read loads a frame, picking the decoder from the file extension.
func Read(path string) (*Frame, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	var (
		f   *Frame
		err error
	)
	switch ext {
	case "csv":
		f, err = readCSV(path)
	case "parquet":
		f, err = readParquet(path)
	case "json":
		f, err = readJSON(path)
	default:
		return nil, fmt.Errorf("read %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// Save writes f as dir/name.<ext> and returns the path.
func Save(w Writer, f *Frame, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+"."+w.Extension())
	if err := w.Write(f, path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
