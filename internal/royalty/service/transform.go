package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/smallbiznis/counterreport/internal/report"
	royaltydomain "github.com/smallbiznis/counterreport/internal/royalty/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type isbnKind struct {
	column string
	match  *regexp.Regexp
	tag    *regexp.Regexp
}

// Order matters: the typed columns are inserted in this order after ISBN.
var isbnKinds = []isbnKind{
	{column: royaltydomain.ColumnEbookISBN, match: regexp.MustCompile(`(?i)ebook`), tag: regexp.MustCompile(`(?i) \(ebook\)`)},
	{column: royaltydomain.ColumnHardcoverISBN, match: regexp.MustCompile(`(?i)hardcover`), tag: regexp.MustCompile(`(?i) \(hardcover\)`)},
	{column: royaltydomain.ColumnPaperISBN, match: regexp.MustCompile(`(?i)paper`), tag: regexp.MustCompile(`(?i) \(paper\)`)},
}

// ReclassifyISBNs splits the tagged ISBN list into ebook, hardcover and
// paper columns and drops the ISBN and parent identifier columns. When a kind
// is tagged more than once the last entry wins.
func ReclassifyISBNs(rows []*report.Row) []*report.Row {
	out := report.CloneRows(rows)
	for _, row := range out {
		typed := make([]report.Column, len(isbnKinds))
		for i, kind := range isbnKinds {
			typed[i] = report.Column{Name: kind.column}
		}
		for _, entry := range strings.Split(row.Value(royaltydomain.ColumnISBN), ",") {
			for i, kind := range isbnKinds {
				if kind.match.MatchString(entry) {
					typed[i].Value = strings.TrimSpace(kind.tag.ReplaceAllString(entry, ""))
				}
			}
		}
		row.InsertAfter(royaltydomain.ColumnISBN, typed...)
		row.Delete(
			royaltydomain.ColumnISBN,
			royaltydomain.ColumnParentISBN,
			royaltydomain.ColumnParentPrintISSN,
			royaltydomain.ColumnParentOnlineISSN,
		)
	}
	return out
}

// AddExternalIDs inserts the hebid column after the title id column.
func AddExternalIDs(rows []*report.Row, lookup *royaltydomain.Lookup) []*report.Row {
	out := report.CloneRows(rows)
	for _, row := range out {
		id := row.Value(royaltydomain.ColumnTitleID)
		row.InsertAfter(royaltydomain.ColumnTitleID, report.Column{
			Name:  royaltydomain.ColumnExternalID,
			Value: lookup.ExternalID(id),
		})
	}
	return out
}

// AddCopyrightHolders inserts the Copyright Holder column after Publisher.
func AddCopyrightHolders(rows []*report.Row, lookup *royaltydomain.Lookup) []*report.Row {
	out := report.CloneRows(rows)
	for _, row := range out {
		id := row.Value(royaltydomain.ColumnTitleID)
		row.InsertAfter(royaltydomain.ColumnPublisher, report.Column{
			Name:  royaltydomain.ColumnCopyrightHolder,
			Value: lookup.CopyrightHolder(id),
		})
	}
	return out
}

// NewPrinter returns the display formatter for hit counts.
func NewPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// FormatHits renders Hits and month columns with thousands separators.
// Values that are not integers are left untouched.
func FormatHits(rows []*report.Row, printer *message.Printer) []*report.Row {
	if printer == nil {
		printer = NewPrinter()
	}
	out := report.CloneRows(rows)
	for _, row := range out {
		for _, col := range row.Columns() {
			if col.Name != royaltydomain.ColumnHits && !report.IsMonthColumn(col.Name) {
				continue
			}
			n, err := strconv.ParseInt(strings.TrimSpace(col.Value), 10, 64)
			if err != nil {
				continue
			}
			row.Set(col.Name, printer.Sprintf("%d", n))
		}
	}
	return out
}

// GroupByPayee buckets rows by copyright holder. Payees are returned in order
// of first appearance and rows keep their relative order.
func GroupByPayee(rows []*report.Row, lookup *royaltydomain.Lookup) ([]string, map[string][]*report.Row) {
	var payees []string
	groups := make(map[string][]*report.Row)
	for _, row := range rows {
		payee := lookup.CopyrightHolder(row.Value(royaltydomain.ColumnTitleID))
		if _, ok := groups[payee]; !ok {
			payees = append(payees, payee)
		}
		groups[payee] = append(groups[payee], row)
	}
	return payees, groups
}

// TotalHits sums the Hits column. Formatted values are accepted.
func TotalHits(rows []*report.Row) int64 {
	var total int64
	for _, row := range rows {
		raw := strings.ReplaceAll(row.Value(royaltydomain.ColumnHits), ",", "")
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}
