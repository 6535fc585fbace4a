package sweep

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var csvHeader = []string{
	"known_sigs",
	"mean_entropy_bits",
	"stddev_entropy_bits",
	"median_entropy_bits",
	"min_entropy_bits",
	"max_entropy_bits",
	"batch_size",
	"trials",
	"mean_known",
	"full_recoveries",
	"inconsistent",
}

// CSVWriter writes rows as CSV with a header line. The first two columns
// are (known_sigs, mean_entropy_bits).
type CSVWriter struct {
	w             *csv.Writer
	headerWritten bool
}

// NewCSVWriter wraps w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteRow appends one row, writing the header first if needed.
func (c *CSVWriter) WriteRow(r Row) error {
	if !c.headerWritten {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.headerWritten = true
	}
	return c.w.Write([]string{
		strconv.Itoa(r.KnownSigs),
		formatFloat(r.MeanBits),
		formatFloat(r.StdDevBits),
		formatFloat(r.MedianBits),
		formatFloat(r.MinBits),
		formatFloat(r.MaxBits),
		strconv.Itoa(r.BatchSize),
		strconv.Itoa(r.Trials),
		formatFloat(r.MeanKnown),
		strconv.Itoa(r.FullRecoveries),
		strconv.Itoa(r.Inconsistent),
	})
}

// Flush flushes buffered rows.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// ReadCSV parses a table written by CSVWriter. Columns are matched by
// header name; only known_sigs and mean_entropy_bits are required.
func ReadCSV(r io.Reader) ([]Row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty sweep table")
	}
	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, req := range csvHeader[:2] {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("missing column %q", req)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for line, rec := range records[1:] {
		var row Row
		var perr error
		getInt := func(name string, dst *int) {
			i, ok := col[name]
			if !ok || perr != nil {
				return
			}
			*dst, perr = strconv.Atoi(rec[i])
		}
		getFloat := func(name string, dst *float64) {
			i, ok := col[name]
			if !ok || perr != nil {
				return
			}
			*dst, perr = strconv.ParseFloat(rec[i], 64)
		}
		getInt("known_sigs", &row.KnownSigs)
		getFloat("mean_entropy_bits", &row.MeanBits)
		getFloat("stddev_entropy_bits", &row.StdDevBits)
		getFloat("median_entropy_bits", &row.MedianBits)
		getFloat("min_entropy_bits", &row.MinBits)
		getFloat("max_entropy_bits", &row.MaxBits)
		getInt("batch_size", &row.BatchSize)
		getInt("trials", &row.Trials)
		getFloat("mean_known", &row.MeanKnown)
		getInt("full_recoveries", &row.FullRecoveries)
		getInt("inconsistent", &row.Inconsistent)
		if perr != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, perr)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type record struct {
	Stage string `json:"stage"`
	Row   any    `json:"report"`
}

// JSONLWriter writes one {"stage":..., "report":...} object per line.
// NaN statistics are encoded as null.
type JSONLWriter struct {
	enc   *json.Encoder
	stage string
}

// NewJSONLWriter wraps w; stage labels every record (typically the
// parameter set name).
func NewJSONLWriter(w io.Writer, stage string) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w), stage: stage}
}

// WriteRow encodes one row.
func (j *JSONLWriter) WriteRow(r Row) error {
	return j.enc.Encode(record{Stage: j.stage, Row: jsonRow(r)})
}

// Flush is a no-op; the encoder writes through.
func (j *JSONLWriter) Flush() error { return nil }

func jsonRow(r Row) map[string]any {
	f := func(v float64) any {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	}
	return map[string]any{
		"known_sigs":          r.KnownSigs,
		"batch_size":          r.BatchSize,
		"trials":              r.Trials,
		"mean_entropy_bits":   f(r.MeanBits),
		"stddev_entropy_bits": f(r.StdDevBits),
		"median_entropy_bits": f(r.MedianBits),
		"min_entropy_bits":    f(r.MinBits),
		"max_entropy_bits":    f(r.MaxBits),
		"mean_known":          f(r.MeanKnown),
		"full_recoveries":     r.FullRecoveries,
		"inconsistent":        r.Inconsistent,
	}
}

// MultiSink fans rows out to several sinks.
type MultiSink []Sink

// WriteRow writes r to every sink, stopping at the first error.
func (m MultiSink) WriteRow(r Row) error {
	for _, s := range m {
		if err := s.WriteRow(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every sink and joins the errors.
func (m MultiSink) Flush() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}
