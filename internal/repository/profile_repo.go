package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emberdating/ember-server/internal/db"
	"github.com/emberdating/ember-server/internal/discovery"
)

// ProfileRepository provides read access to profiles, sponsored inventory
// and device endpoints.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetUser fetches one user by id.
func (r *ProfileRepository) GetUser(ctx context.Context, id uint64) (db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return u, err
}

// ListCandidates returns candidate snapshots for a viewer: every other user,
// annotated with whether that user has already liked the viewer.
func (r *ProfileRepository) ListCandidates(ctx context.Context, viewerID uint64) ([]discovery.CandidateProfile, error) {
	var users []db.User
	if err := r.db.WithContext(ctx).
		Where("id <> ?", viewerID).
		Order("id").
		Find(&users).Error; err != nil {
		return nil, err
	}

	// who already liked the viewer
	var likerIDs []uint64
	if err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("target_id = ?", viewerID).
		Pluck("actor_id", &likerIDs).Error; err != nil {
		return nil, err
	}
	likedViewer := make(map[uint64]struct{}, len(likerIDs))
	for _, id := range likerIDs {
		likedViewer[id] = struct{}{}
	}

	out := make([]discovery.CandidateProfile, 0, len(users))
	for _, u := range users {
		_, liked := likedViewer[u.ID]
		out = append(out, discovery.CandidateProfile{
			ID:              u.ID,
			Name:            u.Username,
			Gender:          u.Gender,
			Age:             u.Age,
			Location:        u.Location,
			DistanceKm:      u.DistanceKm,
			PopularityScore: u.PopularityScore,
			HasLikedViewer:  liked,
			Interests:       u.Interests,
			LastActiveAt:    u.LastActiveAt,
			JoinedAt:        u.JoinedAt,
		})
	}
	return out, nil
}

// ListSponsored returns the sponsored-card inventory in stable id order.
func (r *ProfileRepository) ListSponsored(ctx context.Context) ([]discovery.SponsoredItem, error) {
	var cards []db.SponsoredCard
	if err := r.db.WithContext(ctx).Order("id").Find(&cards).Error; err != nil {
		return nil, err
	}

	out := make([]discovery.SponsoredItem, 0, len(cards))
	for _, c := range cards {
		out = append(out, discovery.SponsoredItem{
			ID:          c.ID,
			Title:       c.Title,
			CTAText:     c.CTAText,
			ImageURL:    c.ImageURL,
			LinkURL:     c.LinkURL,
			Description: c.Description,
		})
	}
	return out, nil
}

// DeviceTokens returns the registered push endpoints for a user.
func (r *ProfileRepository) DeviceTokens(ctx context.Context, userID uint64) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&db.Device{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error
	return tokens, err
}

// UserExists reports whether the given user id is present.
func (r *ProfileRepository) UserExists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
