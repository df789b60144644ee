package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

// DispatchRepository stores what has been mailed or uploaded.
type DispatchRepository interface {
	Create(ctx context.Context, d *model.Dispatch) error
	// Exists reports whether kind/date/target was dispatched. An empty checksum
	// matches any stored checksum.
	Exists(ctx context.Context, kind, date, target, checksum string) (bool, error)
	ListByDate(ctx context.Context, date string) ([]model.Dispatch, error)
}

type dispatchRepo struct {
	db *gorm.DB
}

// NewDispatchRepo creates a DispatchRepository backed by db.
func NewDispatchRepo(db *gorm.DB) DispatchRepository {
	return &dispatchRepo{db: db}
}

func (r *dispatchRepo) Create(ctx context.Context, d *model.Dispatch) error {
	if d.DispatchID == "" {
		d.DispatchID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dispatchRepo) Exists(ctx context.Context, kind, date, target, checksum string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Dispatch{}).
		Where("kind = ? AND date = ? AND target = ?", kind, date, target)
	if checksum != "" {
		q = q.Where("checksum = ?", checksum)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *dispatchRepo) ListByDate(ctx context.Context, date string) ([]model.Dispatch, error) {
	var list []model.Dispatch
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
