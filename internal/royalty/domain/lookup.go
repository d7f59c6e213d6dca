package domain

import (
	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
)

// Lookup holds the per-build title attributions used by the royalty passes.
// It is built once per request from the press's catalog listing.
type Lookup struct {
	holders     map[string]string
	externalIDs map[string]string
}

func NewLookup(titles []catalogdomain.Title) *Lookup {
	l := &Lookup{
		holders:     make(map[string]string, len(titles)),
		externalIDs: make(map[string]string, len(titles)),
	}
	for _, t := range titles {
		l.Add(t)
	}
	return l
}

func (l *Lookup) Add(t catalogdomain.Title) {
	l.holders[t.ID] = t.Holder()
	l.externalIDs[t.ID] = t.ExternalID()
}

// CopyrightHolder returns the payee for a title, or the no-holder sentinel.
func (l *Lookup) CopyrightHolder(titleID string) string {
	if l != nil {
		if h, ok := l.holders[titleID]; ok {
			return h
		}
	}
	return catalogdomain.NoCopyrightHolder
}

// ExternalID returns the HEB id of a title, or an empty string.
func (l *Lookup) ExternalID(titleID string) string {
	if l == nil {
		return ""
	}
	return l.externalIDs[titleID]
}
