package report

import (
	"slices"
	"strconv"
)

// Column is a single named cell of a Row.
type Column struct {
	Name  string
	Value string
}

// Row is an ordered set of named cells. Order is the CSV column order.
type Row struct {
	cols []Column
}

func NewRow(cols ...Column) *Row {
	r := &Row{cols: make([]Column, 0, len(cols))}
	for _, c := range cols {
		r.Set(c.Name, c.Value)
	}
	return r
}

// Set replaces the value of an existing column or appends a new one.
func (r *Row) Set(name, value string) {
	if i := r.Index(name); i >= 0 {
		r.cols[i].Value = value
		return
	}
	r.cols = append(r.cols, Column{Name: name, Value: value})
}

func (r *Row) SetInt(name string, value int64) {
	r.Set(name, strconv.FormatInt(value, 10))
}

func (r *Row) Get(name string) (string, bool) {
	if i := r.Index(name); i >= 0 {
		return r.cols[i].Value, true
	}
	return "", false
}

// Value returns the named cell or an empty string.
func (r *Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

func (r *Row) Index(name string) int {
	for i, c := range r.cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// InsertAfter places cols immediately after the anchor column. Columns that
// already exist are moved. A missing anchor appends at the end.
func (r *Row) InsertAfter(anchor string, cols ...Column) {
	for _, c := range cols {
		r.Delete(c.Name)
	}
	at := len(r.cols)
	if i := r.Index(anchor); i >= 0 {
		at = i + 1
	}
	r.cols = slices.Insert(r.cols, at, cols...)
}

func (r *Row) Delete(names ...string) {
	r.cols = slices.DeleteFunc(r.cols, func(c Column) bool {
		return slices.Contains(names, c.Name)
	})
}

func (r *Row) Clone() *Row {
	return &Row{cols: slices.Clone(r.cols)}
}

func (r *Row) Len() int {
	return len(r.cols)
}

func (r *Row) Columns() []Column {
	return slices.Clone(r.cols)
}

func (r *Row) Names() []string {
	out := make([]string, len(r.cols))
	for i, c := range r.cols {
		out[i] = c.Name
	}
	return out
}

func (r *Row) Values() []string {
	out := make([]string, len(r.cols))
	for i, c := range r.cols {
		out[i] = c.Value
	}
	return out
}

// CloneRows deep-copies a row slice.
func CloneRows(rows []*Row) []*Row {
	out := make([]*Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}
