package discovery

import (
	"sort"
	"strings"
	"time"
)

// DefaultMaxDistanceKm applies when the criteria leave the radius unset.
const DefaultMaxDistanceKm = 100.0

// Gravity score weights and boosts. Fixed, matching product tuning.
const (
	weightRecency    = 0.5
	weightProximity  = 0.3
	weightPopularity = 0.2

	boostLikedViewer = 1000.0
	boostNewAccount  = 500.0
	boostSameCity    = 50.0
)

func effectiveMaxDistance(criteria FilterCriteria) float64 {
	if criteria.MaxDistanceKm <= 0 {
		return DefaultMaxDistanceKm
	}
	return criteria.MaxDistanceKm
}

// GravityScore computes the composite ranking value for one candidate:
//
//	0.5*recency + 0.3*proximity + 0.2*popularity
//	+1000 if the candidate already liked the viewer
//	+500 if the account is younger than 48h
//	+50 if the candidate's location contains the viewer's (case-insensitive)
func GravityScore(p CandidateProfile, criteria FilterCriteria, now time.Time) float64 {
	recency := 1 - float64(now.Sub(p.LastActiveAt))/float64(recencyWindow)
	if recency < 0 {
		recency = 0
	}

	proximity := 1 - p.DistanceKm/effectiveMaxDistance(criteria)
	if proximity < 0 {
		proximity = 0
	}

	popularity := float64(p.PopularityScore) / 100

	gravity := weightRecency*recency + weightProximity*proximity + weightPopularity*popularity

	if p.HasLikedViewer {
		gravity += boostLikedViewer
	}
	if now.Sub(p.JoinedAt) < newAccountWindow {
		gravity += boostNewAccount
	}
	if criteria.Location != "" &&
		strings.Contains(strings.ToLower(p.Location), strings.ToLower(criteria.Location)) {
		gravity += boostSameCity
	}

	return gravity
}

// BuildRankedPool validates the criteria, filters the profile set and
// returns candidates ordered by descending gravity score. The sort is
// stable: ties keep their input order, so identical inputs always produce
// identical pools. Rebuild only on a filter/exclusion change, never on
// pagination — a mid-session rebuild would remap indices under the caller.
func BuildRankedPool(profiles []CandidateProfile, criteria FilterCriteria, excl ExclusionSets, generation uint64, now time.Time) (RankedPool, error) {
	if err := criteria.Validate(); err != nil {
		return RankedPool{}, err
	}

	candidates := BuildCandidatePool(profiles, criteria, excl, now)

	scores := make([]float64, len(candidates))
	for i, p := range candidates {
		scores[i] = GravityScore(p, criteria, now)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranked := make([]CandidateProfile, len(candidates))
	for i, idx := range order {
		ranked[i] = candidates[idx]
	}

	return RankedPool{Generation: generation, Profiles: ranked}, nil
}
