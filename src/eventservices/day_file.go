package eventservices

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

var requiredDayFileColumns = []string{"ticker", "volume", "open", "close", "high", "low", "window_start"}

// dayFileReader feeds gocsv one well shaped record at a time. Rows the csv
// layer cannot parse are dropped and counted so the file as a whole survives.
type dayFileReader struct {
	r       *csv.Reader
	width   int
	broken  int64
	started bool
}

func newDayFileReader(r io.Reader) *dayFileReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	return &dayFileReader{r: cr}
}

func (d *dayFileReader) readHeader() ([]string, error) {
	header, err := d.r.Read()
	if err != nil {
		return nil, fmt.Errorf("dayFileReader: failed to read header: %w", err)
	}

	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	for _, col := range requiredDayFileColumns {
		if !present[col] {
			return nil, fmt.Errorf("dayFileReader: missing column %q", col)
		}
	}

	d.width = len(header)
	return header, nil
}

func (d *dayFileReader) Read() ([]string, error) {
	if !d.started {
		d.started = true
		return d.readHeader()
	}

	for {
		record, err := d.r.Read()
		if err == io.EOF {
			return nil, io.EOF
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			d.broken++
			continue
		}

		if err != nil {
			return nil, err
		}

		// short rows leave required fields empty and fail strict parsing later
		if len(record) < d.width {
			padded := make([]string, d.width)
			copy(padded, record)
			record = padded
		}

		return record[:d.width], nil
	}
}

// GetCSVRow and GetCSVRows let gocsv decode the file one record at a time.
func (d *dayFileReader) GetCSVRow() ([]string, error) {
	return d.Read()
}

func (d *dayFileReader) GetCSVRows() ([][]string, error) {
	return d.ReadAll()
}

func (d *dayFileReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		record, err := d.Read()
		if err == io.EOF {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		out = append(out, record)
	}
}

// ScanDayFile streams a day aggregates file through fn, one row at a time,
// gunzipping it when gzipped is set. It returns the number of lines the csv
// layer could not split into fields.
func ScanDayFile(r io.Reader, gzipped bool, fn func(*eventmodels.RawQuoteRowDTO)) (int64, error) {
	if gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return 0, fmt.Errorf("ScanDayFile: failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	reader := newDayFileReader(r)

	err := gocsv.UnmarshalDecoderToCallback(reader, func(dto eventmodels.RawQuoteRowDTO) {
		fn(&dto)
	})
	if err != nil {
		return reader.broken, fmt.Errorf("ScanDayFile: %w", err)
	}

	return reader.broken, nil
}
