package match

import (
	"time"

	"github.com/oggyb/matchmaker/internal/db"
	svcErr "github.com/oggyb/matchmaker/internal/errors"
	"github.com/oggyb/matchmaker/internal/repository"
	"github.com/oggyb/matchmaker/internal/utils/geo"
)

// Exclusion is the relationship state that removes users from a feed.
type Exclusion struct {
	// Partners share a live (pending or active) conversation with the requester.
	Partners []uint64
	// Skipped is the requester's skip list.
	Skipped []uint64
}

// Filter is the candidate predicate derived from a user's preferences.
type Filter struct {
	BornAfter  time.Time
	BornBefore time.Time
	Gender     string
	Hobbies    []string
	ExcludeIDs []uint64
	// OnlyIDs restricts the feed to these ids when non-nil (revisit-skipped mode).
	OnlyIDs []uint64
	// Empty is set when the filter can match nobody; the fetcher skips the query.
	Empty bool
}

// BuildFilter turns the requester's preferences and exclusion state into a
// candidate predicate. It has no side effects.
//
// Behavior:
//   - Birthday window is [today - maxAge years, today - minAge years].
//   - Gender "any" drops the gender predicate.
//   - Hobbies must intersect the requester's; no hobbies, no predicate.
//   - The requester and their conversation partners are always excluded.
//   - includeOnlySkipped=false excludes the skip list; true allows only it.
func BuildFilter(user *db.User, ex Exclusion, includeOnlySkipped bool, now time.Time) (Filter, error) {
	pref := user.Preference
	if pref.MinAge > pref.MaxAge {
		return Filter{}, svcErr.Validation("minAge cannot exceed maxAge")
	}

	today := dateOf(now)
	f := Filter{
		BornAfter:  today.AddDate(-pref.MaxAge, 0, 0),
		BornBefore: today.AddDate(-pref.MinAge, 0, 0),
	}
	if pref.Gender != "" && pref.Gender != db.GenderAny {
		f.Gender = pref.Gender
	}
	if hobbies := user.HobbyNames(); len(hobbies) > 0 {
		f.Hobbies = hobbies
	}

	excluded := make(map[uint64]struct{}, 1+len(ex.Partners)+len(ex.Skipped))
	f.ExcludeIDs = appendUnique(f.ExcludeIDs, excluded, user.ID)
	f.ExcludeIDs = appendUnique(f.ExcludeIDs, excluded, ex.Partners...)

	if includeOnlySkipped {
		f.OnlyIDs = []uint64{}
		for _, id := range ex.Skipped {
			if _, ok := excluded[id]; ok {
				continue
			}
			f.OnlyIDs = append(f.OnlyIDs, id)
		}
		f.Empty = len(f.OnlyIDs) == 0
	} else {
		f.ExcludeIDs = appendUnique(f.ExcludeIDs, excluded, ex.Skipped...)
	}
	return f, nil
}

// Query binds the filter to a search circle.
func (f Filter) Query(center geo.Point, radiusMeters float64) repository.CandidateQuery {
	return repository.CandidateQuery{
		Center:       center,
		RadiusMeters: radiusMeters,
		BornAfter:    f.BornAfter,
		BornBefore:   f.BornBefore,
		Gender:       f.Gender,
		Hobbies:      f.Hobbies,
		ExcludeIDs:   f.ExcludeIDs,
		OnlyIDs:      f.OnlyIDs,
	}
}

func appendUnique(dst []uint64, seen map[uint64]struct{}, ids ...uint64) []uint64 {
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}

// dateOf truncates t to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ageOn returns the age in whole years of someone born on birthday at now.
func ageOn(birthday, now time.Time) int {
	b, n := birthday.UTC(), now.UTC()
	age := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		age--
	}
	return age
}
