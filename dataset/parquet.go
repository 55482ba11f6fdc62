package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// ParquetWriter stores the time column as INT64 epoch milliseconds and
// every other column as DOUBLE. Parquet groups order their fields by name,
// so the file column order is alphabetical.
type ParquetWriter struct{}

func (ParquetWriter) Extension() string { return "parquet" }

func (ParquetWriter) Write(f *Frame, path string) error {
	group := parquet.Group{TimeColumn: parquet.Int(64)}
	for _, c := range f.Columns {
		if strings.EqualFold(c, TimeColumn) {
			return fmt.Errorf("column %q collides with the time column", c)
		}
		group[c] = parquet.Leaf(parquet.DoubleType)
	}
	for _, c := range f.TextColumns {
		if _, dup := group[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		group[c] = parquet.String()
	}
	schema := parquet.NewSchema("frame", group)

	// leaf index -> frame column; text columns are offset by the numeric
	// width and -1 marks the time column
	fields := schema.Fields()
	src := make([]int, len(fields))
	for j, field := range fields {
		src[j] = -1
		if c, ok := f.Column(field.Name()); ok {
			src[j] = c
		} else if c, ok := f.TextColumn(field.Name()); ok {
			src[j] = len(f.Columns) + c
		}
	}

	rows := make([]parquet.Row, f.Len())
	for r, t := range f.Times {
		row := make(parquet.Row, len(fields))
		for j, c := range src {
			switch {
			case c < 0:
				row[j] = parquet.Int64Value(t.UnixMilli()).Level(0, 0, j)
			case c < len(f.Columns):
				row[j] = parquet.DoubleValue(f.Values[r][c]).Level(0, 0, j)
			default:
				row[j] = parquet.ByteArrayValue([]byte(f.Text[r][c-len(f.Columns)])).Level(0, 0, j)
			}
		}
		rows[r] = row
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	w := parquet.NewWriter(out, schema)
	if _, err := w.WriteRows(rows); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return out.Close()
}

// readParquet reads any flat file: the time column (by alias) may be an
// integer epoch or a string; every other numeric column becomes a float64
// column and byte array columns become text columns. Anything else is
// skipped.
func readParquet(path string) (*Frame, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r := parquet.NewReader(in)
	defer r.Close()

	fields := r.Schema().Fields()
	tcol := -1
	dst := make([]int, len(fields))
	txt := make([]int, len(fields))
	f := NewFrame()
	for j, field := range fields {
		dst[j], txt[j] = -1, -1
		name := strings.ToLower(field.Name())
		if tcol < 0 && isTimeColumn(name) {
			tcol = j
			continue
		}
		if !field.Leaf() {
			continue
		}
		switch kind := field.Type().Kind(); {
		case isNumeric(kind):
			dst[j] = len(f.Columns)
			f.Columns = append(f.Columns, name)
		case kind == parquet.ByteArray:
			txt[j] = len(f.TextColumns)
			f.TextColumns = append(f.TextColumns, name)
		}
	}
	if tcol < 0 {
		return nil, fmt.Errorf("%w: time (one of %s)", ErrMissingColumn, strings.Join(timeAliases, "|"))
	}

	buf := make([]parquet.Row, 512)
	for {
		n, err := r.ReadRows(buf)
		for _, row := range buf[:n] {
			var t time.Time
			var text []string
			if len(f.TextColumns) > 0 {
				text = make([]string, len(f.TextColumns))
			}
			vals := make([]float64, len(f.Columns))
			for i := range vals {
				vals[i] = math.NaN()
			}
			for _, v := range row {
				col := v.Column()
				if col == tcol {
					pt, perr := parquetTime(v)
					if perr != nil {
						return nil, perr
					}
					t = pt
					continue
				}
				if col < 0 || col >= len(dst) || v.IsNull() {
					continue
				}
				if dst[col] >= 0 {
					vals[dst[col]] = parquetFloat(v)
				} else if txt[col] >= 0 {
					text[txt[col]] = string(v.ByteArray())
				}
			}
			if text == nil {
				f.Append(t, vals...)
			} else {
				f.AppendText(t, vals, text)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return f, nil
}

func isNumeric(k parquet.Kind) bool {
	switch k {
	case parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
		return true
	}
	return false
}

func parquetFloat(v parquet.Value) float64 {
	switch v.Kind() {
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	}
	return math.NaN()
}

func parquetTime(v parquet.Value) (time.Time, error) {
	if v.IsNull() {
		return time.Time{}, fmt.Errorf("null timestamp")
	}
	switch v.Kind() {
	case parquet.Int64:
		return epochTime(v.Int64()), nil
	case parquet.Int32:
		return epochTime(int64(v.Int32())), nil
	case parquet.ByteArray:
		return ParseTime(string(v.ByteArray()))
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp kind %s", v.Kind())
}
