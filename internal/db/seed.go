package db

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedCenter is where demo users live (Hanoi, Hoan Kiem).
var SeedCenter = struct{ Lng, Lat float64 }{Lng: 105.8342, Lat: 21.0278}

// SeedPassword is the password of every demo user.
const SeedPassword = "password"

var seedHobbies = []string{
	"music", "hiking", "cooking", "chess", "travel",
	"photography", "running", "reading", "gaming", "yoga",
}

// seedTables is ordered children first so deletes never trip foreign keys.
var seedTables = []string{
	"posts", "notifications", "messages", "conversations",
	"skips", "user_hobbies", "users",
}

// SeedDemoData resets the database and populates it with demo users.
//
// Behavior:
//  1. Clears every table.
//  2. Creates `count` users within ~15 km of SeedCenter, alternating male and
//     female, aged 19..45, each with 2..4 hobbies and an opposite-gender
//     preference.
//  3. Every 4th user gets a post from the last few hours.
//  4. Every user sends a few pending likes; every 5th like is returned,
//     which turns the conversation active.
//
// The generator is seeded with a constant, so runs are reproducible.
func SeedDemoData(db *gorm.DB, log *slog.Logger, count int) error {
	r := rand.New(rand.NewSource(42))

	// --- Fresh start ---
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range seedTables {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence")
	}
	log.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Users ---
	today := time.Now().UTC().Truncate(24 * time.Hour)
	users := make([]User, 0, count)
	for i := 1; i <= count; i++ {
		gender, wants := GenderMale, GenderFemale
		if i%2 == 0 {
			gender, wants = GenderFemale, GenderMale
		}

		// uniform point inside a 15 km disc
		dist := 15000 * math.Sqrt(r.Float64())
		bearing := 2 * math.Pi * r.Float64()
		dLat := dist * math.Cos(bearing) / 111320
		dLng := dist * math.Sin(bearing) / (111320 * math.Cos(SeedCenter.Lat*math.Pi/180))

		u := User{
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Name:         fmt.Sprintf("User %d", i),
			Birthday:     today.AddDate(-(19 + r.Intn(27)), -r.Intn(12), -r.Intn(28)),
			Longitude:    SeedCenter.Lng + dLng,
			Latitude:     SeedCenter.Lat + dLat,
			Gender:       gender,
			Avatar:       fmt.Sprintf("https://picsum.photos/seed/user%d/400", i),
			Gallery:      []string{fmt.Sprintf("https://picsum.photos/seed/user%d-1/800", i)},
			Description:  fmt.Sprintf("Hi, I'm user %d.", i),
			Preference:   Preference{Gender: wants, MaxDistance: 25, MinAge: 18, MaxAge: 60},
		}
		for _, idx := range r.Perm(len(seedHobbies))[:2+r.Intn(3)] {
			u.Hobbies = append(u.Hobbies, UserHobby{Hobby: seedHobbies[idx]})
		}
		users = append(users, u)
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Info("seeded users", "count", len(users))

	// --- Posts ---
	posts := 0
	for i := range users {
		if i%4 != 0 {
			continue
		}
		p := Post{
			UserID:    users[i].ID,
			Content:   fmt.Sprintf("%s is out for %s today", users[i].Name, users[i].Hobbies[0].Hobby),
			Images:    []string{fmt.Sprintf("https://picsum.photos/seed/post%d/800", i)},
			CreatedAt: time.Now().UTC().Add(-time.Duration(r.Intn(12)) * time.Hour),
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}
		posts++
	}
	log.Info("seeded posts", "count", posts)

	// --- Likes and matches ---
	live := true
	seen := map[[2]uint64]bool{}
	likes, matches := 0, 0
	for i := range users {
		actor := users[i]
		for j := 0; j < 3; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == actor.ID || target.Gender == actor.Gender {
				continue
			}
			low, high := PairKey(actor.ID, target.ID)
			if seen[[2]uint64{low, high}] {
				continue
			}
			seen[[2]uint64{low, high}] = true

			status := ConversationPending
			if likes%5 == 0 {
				status = ConversationActive
				matches++
			}
			conv := Conversation{
				SenderID:   actor.ID,
				ReceiverID: target.ID,
				PairLow:    low,
				PairHigh:   high,
				Live:       &live,
				Status:     status,
			}
			if err := db.Create(&conv).Error; err != nil {
				return fmt.Errorf("failed to seed conversation: %w", err)
			}
			likes++
		}
	}
	log.Info("seeded likes", "likes", likes, "matches", matches)

	return nil
}
