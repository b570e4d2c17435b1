package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/oggyb/matchmaker/internal/db"
	"github.com/oggyb/matchmaker/internal/utils/geo"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository provides data access for users, their hobbies and the
// geo candidate query.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// CandidateQuery is the storage-level predicate of the candidate feed.
type CandidateQuery struct {
	Center       geo.Point
	RadiusMeters float64
	// Birthday window, both ends inclusive.
	BornAfter  time.Time
	BornBefore time.Time
	// Gender equality; empty means any.
	Gender string
	// Candidate must share at least one hobby; empty disables the check.
	Hobbies []string
	// ExcludeIDs never appear. OnlyIDs, when non-nil, is the whole allowed set.
	ExcludeIDs []uint64
	OnlyIDs    []uint64
}

// Candidate is a user paired with its distance from the query center.
type Candidate struct {
	User           db.User
	DistanceMeters float64
}

// Create inserts a user with its hobbies.
func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByID loads a user with hobbies.
func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Preload("Hobbies").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail looks a user up by email (case-insensitive).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountExisting returns how many of the given ids exist.
func (r *UserRepository) CountExisting(ctx context.Context, ids ...uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

// UpdatePreference overwrites the preference sub-record.
func (r *UserRepository) UpdatePreference(ctx context.Context, id uint64, p db.Preference) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"pref_gender":       p.Gender,
			"pref_max_distance": p.MaxDistance,
			"pref_min_age":      p.MinAge,
			"pref_max_age":      p.MaxAge,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// SetHobbies replaces the hobby tags of a user. Duplicates collapse.
func (r *UserRepository) SetHobbies(ctx context.Context, userID uint64, hobbies []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db.UserHobby{}).Error; err != nil {
			return err
		}
		rows := hobbyRows(userID, hobbies)
		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

// HobbiesFor returns the hobby tags of each user id.
func (r *UserRepository) HobbiesFor(ctx context.Context, ids []uint64) (map[uint64][]string, error) {
	out := make(map[uint64][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []db.UserHobby
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("user_id, hobby").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, h := range rows {
		out[h.UserID] = append(out[h.UserID], h.Hobby)
	}
	return out, nil
}

// FindCandidates runs the geo candidate query.
//
// Behavior:
//   - The predicate and a bounding box around the center are applied in SQL,
//     which keeps the query portable across MySQL, Postgres and SQLite.
//   - Exact haversine distance is computed per row; rows beyond the radius
//     are dropped.
//   - Result is sorted by distance ascending, id ascending on ties.
//
// The full in-radius set is returned so the caller can count it and slice
// its page from the same snapshot. Every user inside the bounding box is
// loaded on each call, so memory grows with local user density times
// maxDistance; past a few thousand rows per box the page window should move
// into SQL (a distance expression per dialect, LIMIT/OFFSET plus a COUNT).
func (r *UserRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]Candidate, error) {
	if q.OnlyIDs != nil && len(q.OnlyIDs) == 0 {
		return []Candidate{}, nil
	}

	box := geo.BoundingBox(q.Center, q.RadiusMeters)
	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("birthday BETWEEN ? AND ?", q.BornAfter, q.BornBefore)

	if box.CrossesAntimeridian() {
		query = query.Where("(longitude >= ? OR longitude <= ?)", box.MinLng, box.MaxLng)
	} else {
		query = query.Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}
	if q.Gender != "" {
		query = query.Where("gender = ?", q.Gender)
	}
	if len(q.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", q.ExcludeIDs)
	}
	if q.OnlyIDs != nil {
		query = query.Where("id IN ?", q.OnlyIDs)
	}
	if len(q.Hobbies) > 0 {
		query = query.Where(`
			EXISTS (
				SELECT 1 FROM user_hobbies uh
				WHERE uh.user_id = users.id
				  AND uh.hobby IN ?
			)`, q.Hobbies)
	}

	var users []db.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(users))
	for _, u := range users {
		d := geo.DistanceMeters(q.Center, geo.Point{Lng: u.Longitude, Lat: u.Latitude})
		if d > q.RadiusMeters {
			continue
		}
		out = append(out, Candidate{User: u, DistanceMeters: d})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMeters != out[j].DistanceMeters {
			return out[i].DistanceMeters < out[j].DistanceMeters
		}
		return out[i].User.ID < out[j].User.ID
	})
	return out, nil
}

func hobbyRows(userID uint64, hobbies []string) []db.UserHobby {
	seen := make(map[string]struct{}, len(hobbies))
	rows := make([]db.UserHobby, 0, len(hobbies))
	for _, h := range hobbies {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		rows = append(rows, db.UserHobby{UserID: userID, Hobby: h})
	}
	return rows
}
