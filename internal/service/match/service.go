package match

import (
	"context"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/repository"
)

// Service implements the matching API: candidate feed, likes and skips,
// preferences and the liked-you feed.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	skips  *repository.SkipRepository
	convs  *repository.ConversationRepository
	notes  *repository.NotificationRepository
	posts  *repository.PostRepository
}

// NewMatchService creates a new match service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via the user, skip, conversation, notification and post repositories)
//   - RedisCache for the liked-you counter
//   - Push dispatcher for match notifications
func NewMatchService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		skips:  repository.NewSkipRepository(appCtx.DB),
		convs:  repository.NewConversationRepository(appCtx.DB),
		notes:  repository.NewNotificationRepository(appCtx.DB),
		posts:  repository.NewPostRepository(appCtx.DB),
	}
}

// Profile is a user as returned to its owner, with hobbies flattened and
// the current skip list attached.
type Profile struct {
	db.User
	Hobbies      []string `json:"hobbies"`
	SkippedUsers []uint64 `json:"skippedUsers"`
}

// LikeResult is the outcome of a like.
type LikeResult struct {
	Conversation *db.Conversation `json:"conversation"`
	// Matched is true only for the like that turned the pair mutual.
	Matched bool `json:"matched"`
}

// Like records that actor likes target and resolves a mutual match.
//
// Behavior:
//   - Liking yourself is a Conflict.
//   - Both users must exist (NotFound otherwise).
//   - Repeating a like, or liking an already matched user, is a no-op.
//
// Example:
//
//	res, err := svc.Like(ctx, 1, 2)
//	if res.Matched { ... }
func (s *Service) Like(ctx context.Context, actorID, targetID uint64) (*LikeResult, error) {
	s.appCtx.Logger.Debug("Like called", "actor", actorID, "target", targetID)

	if actorID == targetID {
		return nil, svcErr.Conflict("cannot like yourself")
	}
	if err := s.ensureUsers(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	res, err := s.resolveLike(ctx, actorID, targetID)
	if err != nil {
		s.appCtx.Logger.Error("Like failed", "actor", actorID, "target", targetID, "err", err)
		return nil, err
	}

	s.appCtx.Logger.Debug("Like result", "conversation", res.Conversation.ID, "status", res.Conversation.Status, "matched", res.Matched)
	return res, nil
}

// Skip hides target from actor's feed. Skipping twice is a no-op.
// Returns the actor's profile with the refreshed skip list.
func (s *Service) Skip(ctx context.Context, actorID, targetID uint64) (*Profile, error) {
	s.appCtx.Logger.Debug("Skip called", "actor", actorID, "target", targetID)

	if actorID == targetID {
		return nil, svcErr.Conflict("cannot skip yourself")
	}
	if err := s.ensureUsers(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	if err := s.skips.Add(ctx, actorID, targetID); err != nil {
		return nil, svcErr.Map(err)
	}
	// a skipped liker leaves the liked-you feed
	s.invalidateLikedYou(ctx, actorID)

	return s.profile(ctx, actorID)
}

// Unskip removes target from actor's skip list so it can show up again.
// Removing an absent entry is a no-op.
func (s *Service) Unskip(ctx context.Context, actorID, targetID uint64) (*Profile, error) {
	s.appCtx.Logger.Debug("Unskip called", "actor", actorID, "target", targetID)

	if err := s.ensureUsers(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	if err := s.skips.Remove(ctx, actorID, targetID); err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateLikedYou(ctx, actorID)

	return s.profile(ctx, actorID)
}

func (s *Service) profile(ctx context.Context, userID uint64) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	skipped, err := s.skips.Targets(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &Profile{User: *user, Hobbies: user.HobbyNames(), SkippedUsers: skipped}, nil
}

// ensureUsers fails with NotFound unless every distinct id exists.
func (s *Service) ensureUsers(ctx context.Context, ids ...uint64) error {
	distinct := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
	}
	n, err := s.users.CountExisting(ctx, ids...)
	if err != nil {
		return svcErr.Map(err)
	}
	if n != int64(len(distinct)) {
		return svcErr.NotFound("user not found")
	}
	return nil
}

func (s *Service) invalidateLikedYou(ctx context.Context, userIDs ...uint64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateLikedYouCount(ctx, userIDs...); err != nil {
		s.appCtx.Logger.Warn("liked-you counter invalidation failed", "users", userIDs, "err", err)
	}
}
