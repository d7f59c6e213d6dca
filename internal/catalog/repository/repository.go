package repository

import (
	"context"
	"fmt"

	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
	"github.com/smallbiznis/counterreport/pkg/repository"
	"gorm.io/gorm"
)

type catalogRepo struct {
	store repository.Repository[catalogdomain.Title]
}

func New(db *gorm.DB) catalogdomain.Catalog {
	return &catalogRepo{store: repository.ProvideStore[catalogdomain.Title](db)}
}

func (r *catalogRepo) Resolve(ctx context.Context, id string) (catalogdomain.Title, error) {
	if id == "" {
		return catalogdomain.Title{}, catalogdomain.ErrTitleNotFound
	}
	title, err := r.store.FindOne(ctx, &catalogdomain.Title{ID: id})
	if err != nil {
		return catalogdomain.Title{}, err
	}
	if title == nil {
		return catalogdomain.Title{}, fmt.Errorf("%s: %w", id, catalogdomain.ErrTitleNotFound)
	}
	return *title, nil
}

func (r *catalogRepo) ListByPress(ctx context.Context, press string) ([]catalogdomain.Title, error) {
	rows, err := r.store.Find(ctx, &catalogdomain.Title{Press: press}, repository.OrderBy("id ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]catalogdomain.Title, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}
