package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/matchmaker/internal/db"
	"github.com/oggyb/matchmaker/internal/utils/pagination"

	"gorm.io/gorm"
)

// ConversationRepository provides data access for conversations, which
// carry both the like signal (pending) and the match (active).
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new repository bound to the given DB connection.
func NewConversationRepository(database *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: database}
}

// FindLiveBetween returns the non-deleted conversation of the unordered
// pair {a, b}, or nil when there is none.
func (r *ConversationRepository) FindLiveBetween(ctx context.Context, a, b uint64) (*db.Conversation, error) {
	low, high := db.PairKey(a, b)
	var conv db.Conversation
	err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ? AND live = ?", low, high, true).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByID loads a conversation by id.
func (r *ConversationRepository) FindByID(ctx context.Context, id uint64) (*db.Conversation, error) {
	var conv db.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// Create inserts a conversation from sender to receiver with the given status.
//
// Behavior:
//   - Pair keys are normalized so (a, b) and (b, a) collide on the
//     idx_conversation_pair unique index.
//   - If a live conversation already exists for the pair the insert fails
//     with gorm.ErrDuplicatedKey (TranslateError must be on).
func (r *ConversationRepository) Create(ctx context.Context, senderID, receiverID uint64, status string) (*db.Conversation, error) {
	low, high := db.PairKey(senderID, receiverID)
	conv := db.Conversation{
		SenderID:   senderID,
		ReceiverID: receiverID,
		PairLow:    low,
		PairHigh:   high,
		Status:     status,
	}
	if status != db.ConversationDeleted {
		live := true
		conv.Live = &live
	}
	if err := r.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// Activate moves a pending conversation to active.
// Returns false if it was not pending anymore (someone else got there first).
func (r *ConversationRepository) Activate(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Conversation{}).
		Where("id = ? AND status = ?", id, db.ConversationPending).
		Update("status", db.ConversationActive)
	return res.RowsAffected == 1, res.Error
}

// SetStatus writes a new status. Deleting also clears Live so the pair is
// free to start over later, and soft-deletes the conversation's messages.
func (r *ConversationRepository) SetStatus(ctx context.Context, id uint64, status string) error {
	updates := map[string]any{"status": status}
	if status == db.ConversationDeleted {
		updates["live"] = nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Conversation{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if status != db.ConversationDeleted {
			return nil
		}
		return tx.Model(&db.Message{}).
			Where("conversation_id = ?", id).
			Update("deleted", true).Error
	})
}

// SetBlockedBy sets or clears (nil) the blocked-by marker.
func (r *ConversationRepository) SetBlockedBy(ctx context.Context, id uint64, userID *uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.Conversation{}).
		Where("id = ?", id).
		Update("blocked_by", userID).Error
}

// PartnerIDs returns the ids of every user sharing a live conversation
// (pending or active, either direction) with userID.
func (r *ConversationRepository) PartnerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var rows []db.Conversation
	err := r.db.WithContext(ctx).
		Select("sender_id", "receiver_id").
		Where("(sender_id = ? OR receiver_id = ?) AND live = ?", userID, userID, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].Other(userID))
	}
	return ids, nil
}

// ListForUser returns the live conversations of a user, most recent first.
// An empty status means pending and active.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uint64, status string) ([]db.Conversation, error) {
	query := r.db.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?)", userID, userID)
	if status == db.ConversationDeleted {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("live = ?", true)
		if status != "" {
			query = query.Where("status = ?", status)
		}
	}

	convs := []db.Conversation{}
	err := query.Order("updated_at DESC, id DESC").Find(&convs).Error
	return convs, err
}

// pendingReceived scopes to pending likes addressed to receiverID, minus
// senders the receiver has skipped.
func (r *ConversationRepository) pendingReceived(ctx context.Context, receiverID uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("conversations c").
		Where("c.receiver_id = ? AND c.status = ? AND c.live = ?", receiverID, db.ConversationPending, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM skips s
				WHERE s.actor_id = ?
				  AND s.target_id = c.sender_id
			)`, receiverID)
}

// ListPendingReceived returns pending likes sent to the receiver.
//
// Behavior:
//   - Only conversations where receiver_id = X and status = pending.
//   - Excludes senders the receiver explicitly skipped.
//   - Ordered by updated_at DESC, id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListPendingReceived(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *ConversationRepository) ListPendingReceived(
	ctx context.Context,
	receiverID uint64,
	paginationToken *string,
	limit int,
) ([]db.Conversation, *string, error) {
	var convs []db.Conversation

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.pendingReceived(ctx, receiverID).
		Select("c.*").
		Order("c.updated_at DESC, c.id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.ID > 0 && cursor.UpdatedMicro > 0 {
		ts := time.UnixMicro(cursor.UpdatedMicro).UTC()
		query = query.Where(
			"(c.updated_at < ? OR (c.updated_at = ? AND c.id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&convs).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(convs) > limit {
		last := convs[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:           last.ID,
			UpdatedMicro: last.UpdatedAt.UnixMicro(),
		})
		nextToken = &token
		convs = convs[:limit]
	}

	return convs, nextToken, nil
}

// CountPendingReceived returns how many pending likes the receiver has.
// Used in conjunction with the Redis counter (DB is fallback).
func (r *ConversationRepository) CountPendingReceived(ctx context.Context, receiverID uint64) (int64, error) {
	var count int64
	if err := r.pendingReceived(ctx, receiverID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
