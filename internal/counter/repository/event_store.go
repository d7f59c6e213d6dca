package repository

import (
	"context"
	"errors"
	"time"

	counterdomain "github.com/smallbiznis/counterreport/internal/counter/domain"
	"gorm.io/gorm"
)

type eventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) counterdomain.EventStore {
	return &eventStore{db: db}
}

func (r *eventStore) Count(ctx context.Context, q counterdomain.Query) (int64, error) {
	var count int64
	base := r.filtered(ctx, q)

	var err error
	switch q.Unique {
	case counterdomain.UniqueBySession:
		sub := base.Select("session").Group("session")
		err = r.db.WithContext(ctx).Table("(?) AS uniq", sub).Count(&count).Error
	case counterdomain.UniqueByTitle:
		sub := base.Select("parent_noid, session").Group("parent_noid, session")
		err = r.db.WithContext(ctx).Table("(?) AS uniq", sub).Count(&count).Error
	default:
		err = base.Count(&count).Error
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *eventStore) DistinctTitleIDs(ctx context.Context, q counterdomain.Query) ([]string, error) {
	var ids []string
	err := r.filtered(ctx, q).
		Group("parent_noid").
		Order("MIN(id) ASC").
		Pluck("parent_noid", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *eventStore) FirstEventAt(ctx context.Context) (time.Time, bool, error) {
	var ev counterdomain.UsageEvent
	err := r.db.WithContext(ctx).
		Model(&counterdomain.UsageEvent{}).
		Order("id ASC").
		Limit(1).
		Take(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return ev.CreatedAt.UTC(), true, nil
}

func (r *eventStore) Append(ctx context.Context, ev *counterdomain.UsageEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *eventStore) filtered(ctx context.Context, q counterdomain.Query) *gorm.DB {
	stmt := r.db.WithContext(ctx).Model(&counterdomain.UsageEvent{})
	if q.Institution != "" {
		stmt = stmt.Where("institution_id = ?", q.Institution)
	}
	if q.Press != "" {
		stmt = stmt.Where("press = ?", q.Press)
	}
	if q.TitleID != "" {
		stmt = stmt.Where("parent_noid = ?", q.TitleID)
	}
	if q.AccessType != "" {
		stmt = stmt.Where("access_type = ?", q.AccessType)
	}
	if q.RequestsOnly {
		stmt = stmt.Where("request = ?", true)
	}
	if !q.Since.IsZero() {
		stmt = stmt.Where("created_at >= ?", q.Since.UTC())
	}
	if !q.Until.IsZero() {
		stmt = stmt.Where("created_at < ?", q.Until.UTC())
	}
	return stmt
}
