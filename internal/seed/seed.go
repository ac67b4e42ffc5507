// Package seed fills a stub backend with a usable starting dataset: one
// account per role, an approved club with a member, a pending club and an
// upcoming event.
package seed

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/pkg/auth"
	"github.com/tranminh/clubhub/internal/stubserver"
)

// Credentials every seeded account shares, for local development
const DefaultPassword = "Passw0rd!"

// CreateDefaultData seeds the store. Safe to call once per store; it does not
// check for existing data.
func CreateDefaultData(store *stubserver.Store, lgr zerolog.Logger) error {
	lgr.Info().Msg("Seeding default data")

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return errors.Join(errors.New("failed to hash seed password"), err)
	}

	adminID := store.AddUser(models.User{
		Name:  "System Administrator",
		Email: "admin@clubhub.local",
		Role:  models.RoleAdmin,
	}, hash)

	managerID := store.AddUser(models.User{
		Name:  "Mai Lan",
		Email: "manager@clubhub.local",
		Role:  models.RoleManager,
	}, hash)

	studentID := store.AddUser(models.User{
		Name:  "Binh Nguyen",
		Email: "student@clubhub.local",
		Role:  models.RoleStudent,
	}, hash)

	store.AddUser(models.User{
		Name:  "An Pham",
		Email: "an@clubhub.local",
		Role:  models.RoleStudent,
	}, hash)

	store.AddClub(models.Club{
		Name:        "Chess Club",
		Category:    "Games",
		Description: "Weekly blitz nights and a campus ladder.",
		Status:      models.ClubStatusApproved,
		ManagerID:   managerID,
		Members: []models.ClubMember{
			{UserID: studentID, JoinedAt: time.Now().AddDate(0, -1, 0)},
		},
	})

	store.AddClub(models.Club{
		Name:        "Robotics Society",
		Category:    "Engineering",
		Description: "Build season starts in October.",
		Status:      models.ClubStatusPending,
		ManagerID:   managerID,
	})

	store.AddEvent(models.Event{
		Title:       "Autumn Welcome Fair",
		Description: "Every club on one field, with free food.",
		Date:        time.Now().AddDate(0, 0, 14),
		Location:    "Main Quad",
	})

	store.Notify(studentID, "Welcome to ClubHub!")
	store.Notify(managerID, "Your club dashboard is ready.")

	lgr.Info().
		Str("adminID", adminID).
		Str("managerID", managerID).
		Str("studentID", studentID).
		Msg("Default data seeded")
	return nil
}
