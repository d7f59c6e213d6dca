package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
)

const emptyMarker = "Report is empty"

// Serialize renders r in the COUNTER CSV layout.
func Serialize(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the COUNTER CSV layout: padded header lines, a blank
// separator line, then either the empty marker or column names and values.
func Write(w io.Writer, r *Report) error {
	if r == nil {
		r = &Report{}
	}
	width := r.Width()
	if err := checkColumns(r.Rows); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	for _, f := range r.Header {
		line := make([]string, 0, max(width, 2))
		line = append(line, f.Key, f.Value)
		for i := 0; i < width-2; i++ {
			line = append(line, "")
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	if err := cw.Write(make([]string, width)); err != nil {
		return err
	}

	if width == 0 {
		if err := cw.Write([]string{emptyMarker, ""}); err != nil {
			return err
		}
	} else {
		if err := cw.Write(r.Rows[0].Names()); err != nil {
			return err
		}
		for _, row := range r.Rows {
			if err := cw.Write(row.Values()); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func checkColumns(rows []*Row) error {
	if len(rows) == 0 {
		return nil
	}
	names := rows[0].Names()
	for i, row := range rows[1:] {
		if !slices.Equal(names, row.Names()) {
			return fmt.Errorf("row %d: %w", i+1, ErrColumnMismatch)
		}
	}
	return nil
}
