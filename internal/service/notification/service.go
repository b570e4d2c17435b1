package notification

import (
	"context"

	"github.com/oggyb/matchmaker/internal/app"
	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/repository"
)

// listLimit caps how many notifications one listing returns.
const listLimit = 100

// Service exposes a user's in-app notifications.
type Service struct {
	appCtx *app.AppContext
	notes  *repository.NotificationRepository
}

func NewNotificationService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		notes:  repository.NewNotificationRepository(appCtx.DB),
	}
}

// List returns the newest notifications of a user, optionally unread only.
func (s *Service) List(ctx context.Context, userID uint64, unreadOnly bool) ([]db.Notification, error) {
	s.appCtx.Logger.Debug("List notifications called", "user", userID, "unread", unreadOnly)

	notes, err := s.notes.ListForUser(ctx, userID, unreadOnly, listLimit)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return notes, nil
}

// MarkRead flags one notification as read. A notification of another user
// is reported as NotFound.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID uint64) error {
	s.appCtx.Logger.Debug("MarkRead called", "notification", notificationID, "user", userID)

	if err := s.notes.MarkRead(ctx, notificationID, userID); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// MarkAllRead flags every unread notification and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	s.appCtx.Logger.Debug("MarkAllRead called", "user", userID)

	n, err := s.notes.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}
	return n, nil
}
