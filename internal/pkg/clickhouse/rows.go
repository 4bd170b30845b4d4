package clickhouse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

var errTrailingData = errors.New("unexpected data after row")

// Row is one JSONEachRow record. Numbers are kept as json.Number.
type Row map[string]any

// DecodeRows parses a newline delimited JSON body. Blank lines are skipped.
func DecodeRows(body []byte) ([]Row, error) {
	rows := make([]Row, 0)
	for i, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var row Row
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&row); err != nil {
			return nil, &ParseError{Line: i + 1, Err: err}
		}
		// A line holds exactly one object.
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, &ParseError{Line: i + 1, Err: errTrailingData}
		}
		if row == nil {
			row = Row{}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Int64 reads key as an integer. 64-bit integers arrive quoted from the
// store by default, so string values are accepted too.
func (r Row) Int64(key string) (int64, bool) {
	switch v := r[key].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
