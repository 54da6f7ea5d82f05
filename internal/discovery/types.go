// Package discovery holds the pure feed core: candidate filtering, gravity
// ranking and deterministic card sequencing. Everything here operates on
// explicit immutable snapshots; there is no hidden cursor or global pool.
package discovery

import (
	"fmt"
	"time"

	"github.com/emberdating/ember-server/internal/apperr"
)

// PrefEveryone disables the gender filter.
const PrefEveryone = "everyone"

// CandidateProfile is an immutable snapshot of a profile for one ranking
// pass. DistanceKm and HasLikedViewer are viewer-relative.
type CandidateProfile struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Gender          string    `json:"gender"`
	Age             int       `json:"age"`
	Location        string    `json:"location"`
	DistanceKm      float64   `json:"distanceKm"`
	PopularityScore int       `json:"popularityScore"` // 0-100
	HasLikedViewer  bool      `json:"hasLikedViewer"`
	Interests       []string  `json:"interests"`
	LastActiveAt    time.Time `json:"lastActiveAt"`
	JoinedAt        time.Time `json:"joinedAt"`
}

// FilterCriteria is supplied by the caller and validated before use.
// MaxDistanceKm == 0 means "use the default radius" at ranking time.
type FilterCriteria struct {
	GenderPreference string   `json:"genderPreference"`
	MaxDistanceKm    float64  `json:"maxDistanceKm"`
	MinAge           int      `json:"minAge"`
	MaxAge           int      `json:"maxAge"`
	Location         string   `json:"location,omitempty"`
	Interests        []string `json:"interests,omitempty"`
}

// Validate rejects malformed criteria before any filtering runs.
func (c FilterCriteria) Validate() error {
	if c.MinAge > c.MaxAge {
		return apperr.Validation("age range invalid: min %d > max %d", c.MinAge, c.MaxAge)
	}
	if c.MinAge < 0 {
		return apperr.Validation("age range invalid: min %d < 0", c.MinAge)
	}
	if c.MaxDistanceKm < 0 {
		return apperr.Validation("max distance invalid: %v km", c.MaxDistanceKm)
	}
	return nil
}

// ExclusionSets are caller-owned id sets. Swiping forward adds to Swiped,
// rewinding removes again; neither takes effect on the current pool until
// the next filter-driven rebuild.
type ExclusionSets struct {
	Blocked map[uint64]struct{}
	Swiped  map[uint64]struct{}
}

// NewExclusionSets builds the sets from raw id slices.
func NewExclusionSets(blockedIDs, swipedIDs []uint64) ExclusionSets {
	e := ExclusionSets{
		Blocked: make(map[uint64]struct{}, len(blockedIDs)),
		Swiped:  make(map[uint64]struct{}, len(swipedIDs)),
	}
	for _, id := range blockedIDs {
		e.Blocked[id] = struct{}{}
	}
	for _, id := range swipedIDs {
		e.Swiped[id] = struct{}{}
	}
	return e
}

// RankedPool is an ordered, immutable snapshot of scored candidates.
// Generation identifies the filter/exclusion state that produced it; the
// sequencer only ever reads one explicit generation.
type RankedPool struct {
	Generation uint64             `json:"generation"`
	Profiles   []CandidateProfile `json:"profiles"`
}

// SponsoredItem is an ad eligible for the sponsored slot.
type SponsoredItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CTAText     string `json:"ctaText"`
	ImageURL    string `json:"imageUrl"`
	LinkURL     string `json:"linkUrl"`
	Description string `json:"description"`
}

type CardKind string

const (
	CardProfile   CardKind = "profile"
	CardSponsored CardKind = "sponsored"
	CardEmpty     CardKind = "empty"
)

// CardItem is the sequencer output. IdentityKey is a pure function of
// (kind, index, entity id), so repeated queries at the same index against
// the same pool are indistinguishable.
type CardItem struct {
	Kind        CardKind          `json:"kind"`
	Profile     *CandidateProfile `json:"profile,omitempty"`
	Sponsored   *SponsoredItem    `json:"sponsored,omitempty"`
	IdentityKey string            `json:"identityKey"`
}

func profileKey(index int, id uint64) string {
	return fmt.Sprintf("%s-%d-%d", CardProfile, index, id)
}

func sponsoredKey(index int, id string) string {
	return fmt.Sprintf("%s-%d-%s", CardSponsored, index, id)
}

func emptyKey(index int) string {
	return fmt.Sprintf("%s-%d", CardEmpty, index)
}
