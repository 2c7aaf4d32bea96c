package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/rxnsim/internal/sim"
)

var ErrMalformed = errors.New("export: malformed series table")

// WriteCSV writes the result in wide form: a "time" row holding the sample
// times followed by one row per chemical holding its concentrations.
func WriteCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)

	row := make([]string, 0, len(result.Times)+1)
	row = append(row, "time")
	for _, t := range result.Times {
		row = append(row, formatFloat(t))
	}
	if err := cw.Write(row); err != nil {
		return err
	}

	for _, s := range result.Series {
		row = row[:0]
		row = append(row, s.Name)
		for _, v := range s.Values {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV. Metrics and step counts are
// not part of the table; StepsTaken is inferred from the sample count.
func ReadCSV(r io.Reader) (*sim.Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != "time" {
		return nil, fmt.Errorf("%w: missing time row", ErrMalformed)
	}

	times, err := parseRow(records[0][1:])
	if err != nil {
		return nil, fmt.Errorf("%w: time row: %v", ErrMalformed, err)
	}

	result := &sim.Result{
		Times:   times,
		Series:  make([]sim.Series, 0, len(records)-1),
		Metrics: make(map[string]float64),
	}
	if len(times) > 0 {
		result.StepsTaken = len(times) - 1
	}

	for i, record := range records[1:] {
		if len(record) != len(times)+1 {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrMalformed, i+2, len(record)-1, len(times))
		}
		values, err := parseRow(record[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: row %s: %v", ErrMalformed, record[0], err)
		}
		result.Series = append(result.Series, sim.Series{Name: record[0], Values: values})
	}
	return result, nil
}

// ExportCSV writes the table to path.
func ExportCSV(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseRow(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
