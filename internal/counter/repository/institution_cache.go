package repository

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/counterreport/internal/cache"
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
)

const defaultInstitutionTTL = 10 * time.Minute

type cachedDirectory struct {
	inner counterdomain.InstitutionDirectory
	names cache.Cache[string, string]
	ttl   time.Duration
}

// NewCachedInstitutionDirectory memoizes resolved names, including misses.
func NewCachedInstitutionDirectory(inner counterdomain.InstitutionDirectory) counterdomain.InstitutionDirectory {
	return &cachedDirectory{
		inner: inner,
		names: cache.NewTTLCache[string, string](),
		ttl:   defaultInstitutionTTL,
	}
}

func (d *cachedDirectory) NameByIdentifier(ctx context.Context, identifier string) (string, error) {
	if name, ok := d.names.Get(identifier); ok {
		if name == "" {
			return "", counterdomain.ErrUnknownInstitution
		}
		return name, nil
	}
	name, err := d.inner.NameByIdentifier(ctx, identifier)
	switch {
	case err == nil:
		d.names.Set(identifier, name, d.ttl)
	case errors.Is(err, counterdomain.ErrUnknownInstitution):
		d.names.Set(identifier, "", d.ttl)
	}
	return name, err
}
