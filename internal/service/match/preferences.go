package match

import (
	"context"

	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
)

const (
	minAllowedAge = 18
	maxAllowedAge = 120
)

// PreferenceUpdate is a partial preference change; nil fields are kept.
type PreferenceUpdate struct {
	Gender      *string `json:"gender"`
	MaxDistance *int    `json:"maxDistance"`
	MinAge      *int    `json:"minAge"`
	MaxAge      *int    `json:"maxAge"`
}

// GetPreferences returns the stored preference of a user.
func (s *Service) GetPreferences(ctx context.Context, userID uint64) (*db.Preference, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	pref := user.Preference
	return &pref, nil
}

// UpdatePreferences merges the update into the stored preference.
//
// Behavior:
//   - Unknown gender, ages outside 18..120 or a non-positive distance are
//     rejected with Validation.
//   - A merged minAge above maxAge is a Conflict; nothing is written.
func (s *Service) UpdatePreferences(ctx context.Context, userID uint64, upd PreferenceUpdate) (*db.Preference, error) {
	s.appCtx.Logger.Debug("UpdatePreferences called", "user", userID)

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	pref := user.Preference
	if upd.Gender != nil {
		pref.Gender = *upd.Gender
	}
	if upd.MaxDistance != nil {
		pref.MaxDistance = *upd.MaxDistance
	}
	if upd.MinAge != nil {
		pref.MinAge = *upd.MinAge
	}
	if upd.MaxAge != nil {
		pref.MaxAge = *upd.MaxAge
	}

	if err := validatePreference(pref); err != nil {
		return nil, err
	}
	if err := s.users.UpdatePreference(ctx, userID, pref); err != nil {
		return nil, svcErr.Map(err)
	}
	return &pref, nil
}

func validatePreference(p db.Preference) error {
	switch p.Gender {
	case db.GenderMale, db.GenderFemale, db.GenderOther, db.GenderAny:
	default:
		return svcErr.Validation("gender must be one of male, female, other, any")
	}
	if p.MaxDistance <= 0 {
		return svcErr.Validation("maxDistance must be positive")
	}
	for _, age := range []int{p.MinAge, p.MaxAge} {
		if age < minAllowedAge || age > maxAllowedAge {
			return svcErr.Validation("age bounds must be between 18 and 120")
		}
	}
	if p.MinAge > p.MaxAge {
		return svcErr.Conflict("minAge cannot exceed maxAge")
	}
	return nil
}
