package repository

import (
	"context"
	"time"

	"github.com/oggyb/matchmaker/internal/db"

	"gorm.io/gorm"
)

// PostRepository reads the feed posts surfaced next to candidates.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{db: database}
}

func (r *PostRepository) Create(ctx context.Context, p *db.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// LatestSince returns, per author, their newest post created at or after since.
// Authors without such a post are absent from the map.
func (r *PostRepository) LatestSince(ctx context.Context, userIDs []uint64, since time.Time) (map[uint64]db.Post, error) {
	out := make(map[uint64]db.Post, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var posts []db.Post
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND created_at >= ?", userIDs, since).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if _, ok := out[p.UserID]; !ok {
			out[p.UserID] = p
		}
	}
	return out, nil
}
