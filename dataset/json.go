package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// JSONWriter writes {"columns": [...], "rows": [{"date": ..., "values": [...]}]}
// with null for NaN.
type JSONWriter struct{}

func (JSONWriter) Extension() string { return "json" }

type jsonFrame struct {
	Columns     []string  `json:"columns"`
	TextColumns []string  `json:"text_columns,omitempty"`
	Rows        []jsonRow `json:"rows"`
}

type jsonRow struct {
	Date   string     `json:"date"`
	Values []*float64 `json:"values"`
	Text   []string   `json:"text,omitempty"`
}

func (JSONWriter) Write(f *Frame, path string) error {
	doc := jsonFrame{Columns: f.Columns, TextColumns: f.TextColumns, Rows: make([]jsonRow, f.Len())}
	for r, t := range f.Times {
		vals := make([]*float64, len(f.Values[r]))
		for c, v := range f.Values[r] {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				v := v
				vals[c] = &v
			}
		}
		doc.Rows[r] = jsonRow{Date: formatTime(t), Values: vals, Text: f.textRow(r)}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return out.Close()
}

func readJSON(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc jsonFrame
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	f := NewFrame(doc.Columns...)
	f.TextColumns = doc.TextColumns
	for i, row := range doc.Rows {
		if len(row.Values) != len(f.Columns) {
			return nil, fmt.Errorf("row %d: %d values for %d columns", i, len(row.Values), len(f.Columns))
		}
		t, err := ParseTime(row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		vals := make([]float64, len(row.Values))
		for c, v := range row.Values {
			vals[c] = math.NaN()
			if v != nil {
				vals[c] = *v
			}
		}
		if len(f.TextColumns) == 0 {
			f.Append(t, vals...)
			continue
		}
		if len(row.Text) != len(f.TextColumns) {
			return nil, fmt.Errorf("row %d: %d text values for %d text columns", i, len(row.Text), len(f.TextColumns))
		}
		f.AppendText(t, vals, row.Text)
	}
	return f, nil
}
