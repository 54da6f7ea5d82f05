package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedLocations = []string{
	"Camden, London", "Shoreditch, London", "Brooklyn, New York",
	"Kreuzberg, Berlin", "Le Marais, Paris", "Trastevere, Rome",
}

var seedInterests = []string{
	"hiking", "yoga", "photography", "cooking", "travel",
	"live music", "climbing", "cinema", "running", "board games",
}

// SeedTestData resets the database and populates it with demo profiles,
// likes and sponsored cards.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords, varied
//     activity/join timestamps, locations, distances and interests.
//  3. Generates likes with ~70% probability, every 3rd guaranteed mutual.
//  4. Registers one device token per user and a handful of sponsored cards.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{
		"chat_messages", "chat_threads", "matches",
		"received_likes", "likes", "devices", "sponsored_cards", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	now := time.Now()

	// --- Users (10 male, 10 female) ---
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}

		// every 5th user is brand new, the rest are active within ~10 days
		joined := now.Add(-time.Duration(r.Intn(24*90)) * time.Hour)
		if i%5 == 0 {
			joined = now.Add(-time.Duration(r.Intn(40)) * time.Hour)
		}
		lastActive := now.Add(-time.Duration(r.Intn(24*10)) * time.Hour)
		if joined.After(lastActive) {
			lastActive = joined
		}

		tags := []string{
			seedInterests[r.Intn(len(seedInterests))],
			seedInterests[r.Intn(len(seedInterests))],
			seedInterests[r.Intn(len(seedInterests))],
		}

		user := User{
			Username:        fmt.Sprintf("user%d", i),
			Email:           fmt.Sprintf("user%d@example.com", i),
			PasswordHash:    string(hash),
			Gender:          gender,
			Age:             20 + r.Intn(20),
			Location:        seedLocations[r.Intn(len(seedLocations))],
			DistanceKm:      float64(r.Intn(120)),
			PopularityScore: r.Intn(101),
			Interests:       tags,
			LastActiveAt:    lastActive,
			JoinedAt:        joined,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		device := Device{UserID: user.ID, Token: fmt.Sprintf("device-token-%d", user.ID)}
		if err := db.Create(&device).Error; err != nil {
			return fmt.Errorf("failed to seed device: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Likes (~70% like rate, every 3rd pair mutual) ---
	counter := 0
	for actorID := uint64(1); actorID <= 20; actorID++ {
		for j := 0; j < 8; j++ {
			targetID := uint64(r.Intn(20) + 1)
			if actorID == targetID {
				continue
			}
			if r.Intn(100) >= 70 {
				continue
			}

			like := Like{ActorID: actorID, TargetID: targetID}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"is_super_like", "updated_at"}),
			}).Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			if counter%3 == 0 {
				recip := Like{ActorID: targetID, TargetID: actorID}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"is_super_like", "updated_at"}),
				}).Create(&recip)
			}
			counter++
		}
	}

	// --- Sponsored cards ---
	ads := []SponsoredCard{
		{ID: "ad-premium", Title: "Go Premium", CTAText: "Upgrade", Description: "See everyone who liked you."},
		{ID: "ad-boost", Title: "Boost your profile", CTAText: "Boost", Description: "Be seen by 10x more people tonight."},
		{ID: "ad-events", Title: "Singles events near you", CTAText: "Browse", Description: "Meet people offline this weekend."},
	}
	if err := db.Create(&ads).Error; err != nil {
		return fmt.Errorf("failed to seed sponsored cards: %w", err)
	}

	return nil
}
