package repository

import (
	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("counter.repository",
	fx.Provide(NewEventStore),
	fx.Provide(func(db *gorm.DB) counterdomain.InstitutionDirectory {
		return NewCachedInstitutionDirectory(NewInstitutionDirectory(db))
	}),
)
