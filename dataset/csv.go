package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// CSVWriter writes a header row then one row per frame row. NaN is an
// empty cell.
type CSVWriter struct{}

func (CSVWriter) Extension() string { return "csv" }

func (CSVWriter) Write(f *Frame, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	header := append([]string{TimeColumn}, f.Columns...)
	if err := w.Write(append(header, f.TextColumns...)); err != nil {
		return err
	}
	rec := make([]string, len(f.Columns)+len(f.TextColumns)+1)
	for r, t := range f.Times {
		rec[0] = formatTime(t)
		for c, v := range f.Values[r] {
			rec[c+1] = formatFloat(v)
		}
		copy(rec[len(f.Columns)+1:], f.textRow(r))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return out.Close()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func readCSV(path string) (*Frame, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r := csv.NewReader(in)
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, err
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	tcol := -1
	var names []string
	var cols []int
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if tcol < 0 && isTimeColumn(name) {
			tcol = i
			continue
		}
		if name == "" {
			// pandas index column
			continue
		}
		names = append(names, name)
		cols = append(cols, i)
	}
	if tcol < 0 {
		return nil, fmt.Errorf("%w: time (one of %s)", ErrMissingColumn, strings.Join(timeAliases, "|"))
	}

	// a column whose first non-empty cell is not a number is text
	f := NewFrame()
	var num, txt []int
	for j, c := range cols {
		if isTextColumn(records, c) {
			f.TextColumns = append(f.TextColumns, names[j])
			txt = append(txt, c)
		} else {
			f.Columns = append(f.Columns, names[j])
			num = append(num, c)
		}
	}

	for k, rec := range records {
		line := k + 2
		t, err := ParseTime(rec[tcol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]float64, len(num))
		for j, c := range num {
			v, err := parseFloat(rec[c])
			if err != nil {
				return nil, fmt.Errorf("line %d column %q: %w", line, f.Columns[j], err)
			}
			row[j] = v
		}
		if len(txt) == 0 {
			f.Append(t, row...)
			continue
		}
		text := make([]string, len(txt))
		for j, c := range txt {
			text[j] = rec[c]
		}
		f.AppendText(t, row, text)
	}
	return f, nil
}

func isTextColumn(records [][]string, c int) bool {
	for _, rec := range records {
		s := strings.TrimSpace(rec[c])
		if s == "" {
			continue
		}
		_, err := strconv.ParseFloat(s, 64)
		return err != nil
	}
	return false
}

func isTimeColumn(name string) bool {
	for _, a := range timeAliases {
		if name == a {
			return true
		}
	}
	return false
}
