package match

import (
	"context"
	"time"

	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/repository"
	"github.com/oggyb/matchmaker/internal/utils/geo"
	"github.com/oggyb/matchmaker/internal/utils/pagination"
)

// freshPostWindow is how recent a post must be to be shown on a card.
const freshPostWindow = 24 * time.Hour

// PageRequest selects a page of the candidate feed.
type PageRequest struct {
	Page  int
	Limit int
	// ShowSkipped switches the feed to previously skipped users only.
	ShowSkipped bool
}

// Location is a GeoJSON point, [longitude, latitude].
type Location struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Candidate is the public card of a potential match.
type Candidate struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Birthday    time.Time `json:"birthday"`
	Gender      string    `json:"gender"`
	Avatar      string    `json:"avatar"`
	Gallery     []string  `json:"gallery"`
	Description string    `json:"description"`
	Hobbies     []string  `json:"hobbies"`
	Location    Location  `json:"location"`
	// Distance from the requester in whole kilometers.
	Distance  string   `json:"distance"`
	FreshPost *db.Post `json:"freshPost"`
}

// CandidatePage is one page of the candidate feed.
type CandidatePage struct {
	Results []Candidate `json:"results"`
	pagination.Page
}

// PotentialMatches returns the requester's candidate feed, nearest first.
//
// Behavior:
//   - Loads the requester (NotFound if absent) and its exclusion state.
//   - Builds the filter from the stored preference; radius is maxDistance km.
//   - Total and the page come from the same in-radius result set.
//   - Each card carries the candidate's latest post from the last 24h.
//
// Example:
//
//	page, err := svc.PotentialMatches(ctx, 42, PageRequest{Page: 1, Limit: 20})
func (s *Service) PotentialMatches(ctx context.Context, userID uint64, req PageRequest) (*CandidatePage, error) {
	s.appCtx.Logger.Debug("PotentialMatches called", "user", userID, "page", req.Page, "limit", req.Limit, "showSkipped", req.ShowSkipped)

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	partners, err := s.convs.PartnerIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	skipped, err := s.skips.Targets(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	now := s.appCtx.Now().UTC()
	filter, err := BuildFilter(user, Exclusion{Partners: partners, Skipped: skipped}, req.ShowSkipped, now)
	if err != nil {
		return nil, err
	}

	page, limit := pagination.Normalize(req.Page, req.Limit, s.appCtx.Config.Match.DefaultPageSize, s.appCtx.Config.Match.MaxPageSize)
	if filter.Empty {
		return &CandidatePage{Results: []Candidate{}, Page: pagination.NewPage(page, limit, 0)}, nil
	}

	center := geo.Point{Lng: user.Longitude, Lat: user.Latitude}
	radius := float64(user.Preference.MaxDistance) * 1000
	rows, err := s.users.FindCandidates(ctx, filter.Query(center, radius))
	if err != nil {
		s.appCtx.Logger.Error("FindCandidates failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	meta := pagination.NewPage(page, limit, int64(len(rows)))
	start, end := meta.Window(len(rows))
	window := rows[start:end]

	results, err := s.cards(ctx, window, now)
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Debug("PotentialMatches result", "user", userID, "total", meta.Total, "returned", len(results))
	return &CandidatePage{Results: results, Page: meta}, nil
}

// cards projects candidate rows into their public form.
func (s *Service) cards(ctx context.Context, rows []repository.Candidate, now time.Time) ([]Candidate, error) {
	ids := make([]uint64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.User.ID)
	}
	hobbies, err := s.users.HobbiesFor(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	posts, err := s.posts.LatestSince(ctx, ids, now.Add(-freshPostWindow))
	if err != nil {
		return nil, svcErr.Map(err)
	}

	out := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		u := r.User
		c := Candidate{
			ID:          u.ID,
			Name:        u.Name,
			Age:         ageOn(u.Birthday, now),
			Birthday:    u.Birthday,
			Gender:      u.Gender,
			Avatar:      u.Avatar,
			Gallery:     append([]string{}, u.Gallery...),
			Description: u.Description,
			Hobbies:     hobbies[u.ID],
			Location:    Location{Type: "Point", Coordinates: [2]float64{u.Longitude, u.Latitude}},
			Distance:    geo.KilometersLabel(r.DistanceMeters),
		}
		if c.Hobbies == nil {
			c.Hobbies = []string{}
		}
		if p, ok := posts[u.ID]; ok {
			post := p
			c.FreshPost = &post
		}
		out = append(out, c)
	}
	return out, nil
}
