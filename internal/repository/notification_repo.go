package repository

import (
	"context"

	"github.com/oggyb/matchmaker/internal/db"

	"gorm.io/gorm"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

func (r *NotificationRepository) Create(ctx context.Context, notes ...*db.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(notes).Error
}

// ListForUser returns notifications newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]db.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	notes := []db.Notification{}
	err := query.Order("created_at DESC, id DESC").Find(&notes).Error
	return notes, err
}

// MarkRead flags one notification owned by userID as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint64) error {
	res := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the flag was already set
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of userID, returning how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
