package repository

import (
	"context"
	"fmt"
	"strings"

	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"github.com/smallbiznis/counterreport/pkg/repository"
	"gorm.io/gorm"
)

type institutionDirectory struct {
	store repository.Repository[counterdomain.Institution]
}

func NewInstitutionDirectory(db *gorm.DB) counterdomain.InstitutionDirectory {
	return &institutionDirectory{
		store: repository.ProvideStore[counterdomain.Institution](db),
	}
}

func (r *institutionDirectory) NameByIdentifier(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", counterdomain.ErrUnknownInstitution
	}
	inst, err := r.store.FindOne(ctx, &counterdomain.Institution{Identifier: identifier})
	if err != nil {
		return "", err
	}
	if inst == nil {
		return "", fmt.Errorf("%s: %w", identifier, counterdomain.ErrUnknownInstitution)
	}
	return inst.Name, nil
}
