package repository

import (
	"context"

	"github.com/oggyb/matchmaker/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SkipRepository provides data access for the Skip model.
// A user's skip list is the set of TargetIDs of their rows.
type SkipRepository struct {
	db *gorm.DB
}

// NewSkipRepository creates a new repository bound to the given DB connection.
func NewSkipRepository(database *gorm.DB) *SkipRepository {
	return &SkipRepository{db: database}
}

// Add records that actor skipped target.
//
// Behavior:
//   - If (actor_id, target_id) already exists → nothing happens.
//   - Otherwise a row is inserted.
//   - Composite PK + ON CONFLICT DO NOTHING make this an atomic set-insert;
//     there is no read-modify-write of a list.
//
// Example:
//
//	repo.Add(ctx, 1, 2) // user 1 skipped user 2
func (r *SkipRepository) Add(ctx context.Context, actorID, targetID uint64) error {
	skip := db.Skip{ActorID: actorID, TargetID: targetID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoNothing: true,
		}).
		Create(&skip).Error
}

// Remove deletes a skip so the target shows up in the regular feed again.
func (r *SkipRepository) Remove(ctx context.Context, actorID, targetID uint64) error {
	return r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Delete(&db.Skip{}).Error
}

// Targets returns the skip list of actor, oldest first.
func (r *SkipRepository) Targets(ctx context.Context, actorID uint64) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.WithContext(ctx).
		Model(&db.Skip{}).
		Where("actor_id = ?", actorID).
		Order("created_at ASC, target_id ASC").
		Pluck("target_id", &ids).Error
	return ids, err
}

// HasSkipped checks whether actor skipped target.
func (r *SkipRepository) HasSkipped(ctx context.Context, actorID, targetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Skip{}).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}
