package match

import (
	"context"

	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/utils/pagination"
)

// likedYouPageSize is the fixed page size of the liked-you feed.
const likedYouPageSize = 20

// Liker is one pending like addressed to the requester.
type Liker struct {
	UserID         uint64 `json:"userId"`
	ConversationID uint64 `json:"conversationId"`
	UnixTimestamp  int64  `json:"unixTimestamp"`
}

// LikedYouPage is one page of the liked-you feed.
type LikedYouPage struct {
	Likers    []Liker `json:"likers"`
	NextToken *string `json:"nextToken,omitempty"`
}

// ListLikedYou returns the users whose like to the recipient is still pending.
//
// Behavior:
//   - Only pending conversations where the recipient is the receiver.
//   - Excludes likers the recipient skipped.
//   - Newest first, cursor-based pagination with token.
func (s *Service) ListLikedYou(ctx context.Context, recipientID uint64, token *string) (*LikedYouPage, error) {
	s.appCtx.Logger.Debug("ListLikedYou called", "recipient", recipientID, "token", token)

	if token != nil {
		if _, err := pagination.Decode(*token); err != nil {
			return nil, svcErr.Validation("invalid pagination token")
		}
	}
	if err := s.ensureUsers(ctx, recipientID); err != nil {
		return nil, err
	}

	convs, next, err := s.convs.ListPendingReceived(ctx, recipientID, token, likedYouPageSize)
	if err != nil {
		s.appCtx.Logger.Error("ListPendingReceived failed", "err", err)
		return nil, svcErr.Map(err)
	}

	page := &LikedYouPage{Likers: make([]Liker, 0, len(convs)), NextToken: next}
	for _, c := range convs {
		page.Likers = append(page.Likers, Liker{
			UserID:         c.SenderID,
			ConversationID: c.ID,
			UnixTimestamp:  c.UpdatedAt.UnixMilli(),
		})
	}

	s.appCtx.Logger.Debug("ListLikedYou result", "liker_count", len(page.Likers), "has_next", next != nil)
	return page, nil
}

// CountLikedYou returns how many pending likes the recipient has.
// Cache-first strategy:
//  1. Reads likes:pending:count:<id> from Redis, refreshing its TTL on hit.
//  2. On miss or a corrupt entry, counts in the DB.
//  3. Stores the DB count with a 1h TTL.
//
// Likes, matches and skips invalidate the entry.
func (s *Service) CountLikedYou(ctx context.Context, recipientID uint64) (int64, error) {
	s.appCtx.Logger.Debug("CountLikedYou called", "recipient", recipientID)

	rc := s.appCtx.RedisCache
	if rc != nil {
		if n, ok, err := rc.GetLikedYouCount(ctx, recipientID); err == nil && ok {
			return n, nil
		}
	}

	if err := s.ensureUsers(ctx, recipientID); err != nil {
		return 0, err
	}
	count, err := s.convs.CountPendingReceived(ctx, recipientID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if rc != nil {
		if err := rc.SetLikedYouCount(ctx, recipientID, count); err != nil {
			s.appCtx.Logger.Warn("liked-you counter not cached", "recipient", recipientID, "err", err)
		}
	}
	return count, nil
}
