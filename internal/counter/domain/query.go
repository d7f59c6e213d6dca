package domain

import (
	"context"
	"time"
)

// Uniqueness selects how matching events are deduplicated before counting.
type Uniqueness int

const (
	// UniqueNone counts every matching event.
	UniqueNone Uniqueness = iota
	// UniqueBySession counts distinct sessions.
	UniqueBySession
	// UniqueByTitle counts distinct (title, session) pairs.
	UniqueByTitle
)

// Query filters usage events. Empty string filters match everything.
// Since is inclusive and Until exclusive; zero values leave the bound open.
type Query struct {
	Institution  string
	Press        string
	TitleID      string
	AccessType   string
	RequestsOnly bool
	Since        time.Time
	Until        time.Time
	Unique       Uniqueness
}

// Within returns a copy of q narrowed to [since, until).
func (q Query) Within(since, until time.Time) Query {
	if q.Since.IsZero() || since.After(q.Since) {
		q.Since = since
	}
	if q.Until.IsZero() || until.Before(q.Until) {
		q.Until = until
	}
	return q
}

// EventStore answers the counted queries a report is built from.
type EventStore interface {
	Count(ctx context.Context, q Query) (int64, error)
	// DistinctTitleIDs lists title ids in order of first appearance.
	DistinctTitleIDs(ctx context.Context, q Query) ([]string, error)
	// FirstEventAt returns the timestamp of the earliest recorded event.
	FirstEventAt(ctx context.Context) (time.Time, bool, error)
	Append(ctx context.Context, ev *UsageEvent) error
}

// InstitutionDirectory resolves institution identifiers to names.
type InstitutionDirectory interface {
	NameByIdentifier(ctx context.Context, identifier string) (string, error)
}
