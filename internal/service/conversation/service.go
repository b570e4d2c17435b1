package conversation

import (
	"context"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/repository"
)

// Service manages the lifecycle of conversations after they were created
// by a like.
type Service struct {
	appCtx *app.AppContext
	convs  *repository.ConversationRepository
}

// NewConversationService creates a new conversation service with dependencies from AppContext.
func NewConversationService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		convs:  repository.NewConversationRepository(appCtx.DB),
	}
}

// List returns the conversations of a user, most recently updated first.
// An empty status lists every live (pending or active) conversation.
func (s *Service) List(ctx context.Context, userID uint64, status string) ([]db.Conversation, error) {
	s.appCtx.Logger.Debug("List conversations called", "user", userID, "status", status)

	if status != "" && !validStatus(status) {
		return nil, svcErr.Validation("status must be one of pending, active, deleted")
	}
	convs, err := s.convs.ListForUser(ctx, userID, status)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return convs, nil
}

// UpdateStatus moves a conversation to a new status on behalf of actor.
//
// Behavior:
//   - Unknown status is a Validation error.
//   - The actor must be a participant, otherwise NotFound.
//   - Requesting the current status is a no-op.
//   - Only pending->deleted and active->deleted are allowed here; a pending
//     conversation becomes active only through a reciprocal like.
//   - Deleting frees the pair so the two users may match again later.
func (s *Service) UpdateStatus(ctx context.Context, convID, actorID uint64, status string) (*db.Conversation, error) {
	s.appCtx.Logger.Debug("UpdateStatus called", "conversation", convID, "actor", actorID, "status", status)

	if !validStatus(status) {
		return nil, svcErr.Validation("status must be one of pending, active, deleted")
	}
	conv, err := s.participantConversation(ctx, convID, actorID)
	if err != nil {
		return nil, err
	}
	if conv.Status == status {
		return conv, nil
	}
	if status != db.ConversationDeleted {
		return nil, svcErr.Conflict("cannot move conversation from " + conv.Status + " to " + status)
	}

	if err := s.convs.SetStatus(ctx, conv.ID, status); err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateLikedYou(ctx, conv.SenderID, conv.ReceiverID)

	return s.reload(ctx, conv.ID)
}

// Delete is UpdateStatus(deleted).
func (s *Service) Delete(ctx context.Context, convID, actorID uint64) (*db.Conversation, error) {
	return s.UpdateStatus(ctx, convID, actorID, db.ConversationDeleted)
}

// Block marks the conversation as blocked by actor. Blocking an already
// blocked conversation is a Conflict unless actor is the blocker.
func (s *Service) Block(ctx context.Context, convID, actorID uint64) (*db.Conversation, error) {
	s.appCtx.Logger.Debug("Block called", "conversation", convID, "actor", actorID)

	conv, err := s.participantConversation(ctx, convID, actorID)
	if err != nil {
		return nil, err
	}
	if conv.Status == db.ConversationDeleted {
		return nil, svcErr.Conflict("conversation was deleted")
	}
	if conv.BlockedBy != nil {
		if *conv.BlockedBy == actorID {
			return conv, nil
		}
		return nil, svcErr.Conflict("conversation is already blocked")
	}

	blocker := actorID
	if err := s.convs.SetBlockedBy(ctx, conv.ID, &blocker); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.reload(ctx, conv.ID)
}

// Unblock clears the block. Only the user who blocked may unblock.
func (s *Service) Unblock(ctx context.Context, convID, actorID uint64) (*db.Conversation, error) {
	s.appCtx.Logger.Debug("Unblock called", "conversation", convID, "actor", actorID)

	conv, err := s.participantConversation(ctx, convID, actorID)
	if err != nil {
		return nil, err
	}
	if conv.BlockedBy == nil {
		return conv, nil
	}
	if *conv.BlockedBy != actorID {
		return nil, svcErr.Conflict("only the blocking user can unblock")
	}

	if err := s.convs.SetBlockedBy(ctx, conv.ID, nil); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.reload(ctx, conv.ID)
}

// participantConversation loads a conversation and hides it from anyone
// who is not part of it.
func (s *Service) participantConversation(ctx context.Context, convID, actorID uint64) (*db.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, convID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !conv.Involves(actorID) {
		return nil, svcErr.NotFound("conversation not found")
	}
	return conv, nil
}

func (s *Service) reload(ctx context.Context, id uint64) (*db.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return conv, nil
}

func (s *Service) invalidateLikedYou(ctx context.Context, userIDs ...uint64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateLikedYouCount(ctx, userIDs...); err != nil {
		s.appCtx.Logger.Warn("liked-you counter invalidation failed", "users", userIDs, "err", err)
	}
}

func validStatus(status string) bool {
	switch status {
	case db.ConversationPending, db.ConversationActive, db.ConversationDeleted:
		return true
	}
	return false
}
