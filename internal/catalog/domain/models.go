// Package domain describes the read-only title catalog the reports are
// enriched from.
package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/datatypes"
)

// NoCopyrightHolder is reported for titles without a rights holder.
const NoCopyrightHolder = "no copyright holder"

var externalIDPattern = regexp.MustCompile(`^heb[0-9].*`)

// Title is a monograph's descriptive metadata.
type Title struct {
	ID              string                      `gorm:"primaryKey;type:text" json:"id"`
	Press           string                      `gorm:"type:text;not null;index" json:"press"`
	Title           string                      `gorm:"type:text;not null" json:"title"`
	Publisher       string                      `gorm:"type:text;not null" json:"publisher"`
	ISBNs           datatypes.JSONSlice[string] `gorm:"column:isbns;type:jsonb" json:"isbns"`
	CitableLink     string                      `gorm:"type:text;not null" json:"citable_link"`
	Identifiers     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"identifiers"`
	CopyrightHolder string                      `gorm:"type:text;not null" json:"copyright_holder"`
}

func (Title) TableName() string { return "catalog_titles" }

// ExternalID is the first identifier that looks like an ACLS HEB id.
func (t Title) ExternalID() string {
	for _, id := range t.Identifiers {
		if externalIDPattern.MatchString(id) {
			return id
		}
	}
	return ""
}

// Holder returns the copyright holder or the NoCopyrightHolder sentinel.
func (t Title) Holder() string {
	if h := strings.TrimSpace(t.CopyrightHolder); h != "" {
		return h
	}
	return NoCopyrightHolder
}

type Catalog interface {
	Resolve(ctx context.Context, id string) (Title, error)
	ListByPress(ctx context.Context, press string) ([]Title, error)
}

var ErrTitleNotFound = errors.New("title_not_found")
