package match

import (
	"context"
	"fmt"

	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/push"
)

// resolveLike applies a like from actor to target against the live
// conversation of the pair.
//
// Behavior:
//   - No live conversation: create one as pending with actor as sender.
//     A concurrent creator wins on the unique pair index; the loser re-reads
//     and resolves against the winner's row.
//   - Pending with target as sender: conditional update to active. Only the
//     caller whose update succeeded reports Matched and sends notifications.
//   - Pending with actor as sender, active, or blocked: returned unchanged.
func (s *Service) resolveLike(ctx context.Context, actorID, targetID uint64) (*LikeResult, error) {
	conv, err := s.convs.FindLiveBetween(ctx, actorID, targetID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	if conv == nil {
		created, createErr := s.convs.Create(ctx, actorID, targetID, db.ConversationPending)
		if createErr == nil {
			s.invalidateLikedYou(ctx, targetID)
			return &LikeResult{Conversation: created}, nil
		}

		// lost the race for the pair, resolve against whoever won
		conv, err = s.convs.FindLiveBetween(ctx, actorID, targetID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if conv == nil {
			return nil, svcErr.Map(createErr)
		}
		s.appCtx.Logger.Debug("conversation created concurrently", "conversation", conv.ID, "actor", actorID)
	}

	return s.reciprocate(ctx, actorID, conv)
}

func (s *Service) reciprocate(ctx context.Context, actorID uint64, conv *db.Conversation) (*LikeResult, error) {
	if conv.Status != db.ConversationPending || conv.SenderID == actorID || conv.BlockedBy != nil {
		return &LikeResult{Conversation: conv}, nil
	}

	activated, err := s.convs.Activate(ctx, conv.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	fresh, err := s.convs.FindByID(ctx, conv.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !activated {
		return &LikeResult{Conversation: fresh}, nil
	}

	s.onMatch(ctx, fresh)
	return &LikeResult{Conversation: fresh, Matched: true}, nil
}

// onMatch runs the side effects of a new match. Failures are logged: the
// match itself is already durable.
func (s *Service) onMatch(ctx context.Context, conv *db.Conversation) {
	s.invalidateLikedYou(ctx, conv.SenderID, conv.ReceiverID)

	names := map[uint64]string{}
	for _, id := range []uint64{conv.SenderID, conv.ReceiverID} {
		if u, err := s.users.FindByID(ctx, id); err == nil {
			names[id] = u.Name
		}
	}

	convID := conv.ID
	notes := []*db.Notification{
		{UserID: conv.SenderID, Content: matchText(names[conv.ReceiverID]), ConversationID: &convID},
		{UserID: conv.ReceiverID, Content: matchText(names[conv.SenderID]), ConversationID: &convID},
	}
	if err := s.notes.Create(ctx, notes...); err != nil {
		s.appCtx.Logger.Warn("match notifications not stored", "conversation", conv.ID, "err", err)
	}

	// the sender liked first and is not the one looking at the response
	s.appCtx.Push.Dispatch(push.NewEvent(
		conv.SenderID,
		push.KindMatch,
		"It's a match!",
		matchText(names[conv.ReceiverID]),
		map[string]any{"conversationId": conv.ID, "userId": conv.ReceiverID},
	))
}

func matchText(name string) string {
	if name == "" {
		return "You have a new match"
	}
	return fmt.Sprintf("You matched with %s", name)
}
