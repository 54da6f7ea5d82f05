package discovery

import "time"

const (
	// Candidates inactive for longer than this are filtered out.
	recencyWindow = 7 * 24 * time.Hour
	// Accounts younger than this bypass the staleness filter and earn
	// the new-account ranking boost.
	newAccountWindow = 48 * time.Hour
)

// BuildCandidatePool applies the hard eligibility filters, in order:
// exclusion sets, gender preference, distance cutoff, age range, activity
// recency (with new-account exemption), interest overlap. An empty result
// is a legitimate zero-length pool, not an error.
//
// Criteria must already be validated; see FilterCriteria.Validate.
func BuildCandidatePool(profiles []CandidateProfile, criteria FilterCriteria, excl ExclusionSets, now time.Time) []CandidateProfile {
	out := make([]CandidateProfile, 0, len(profiles))

	for _, p := range profiles {
		if _, ok := excl.Blocked[p.ID]; ok {
			continue
		}
		if _, ok := excl.Swiped[p.ID]; ok {
			continue
		}

		if criteria.GenderPreference != "" && criteria.GenderPreference != PrefEveryone &&
			p.Gender != criteria.GenderPreference {
			continue
		}

		// hard radius, no override
		if p.DistanceKm > effectiveMaxDistance(criteria) {
			continue
		}

		if p.Age < criteria.MinAge || p.Age > criteria.MaxAge {
			continue
		}

		// ghost profiles: inactive beyond the window, unless brand new
		isNew := now.Sub(p.JoinedAt) < newAccountWindow
		if !isNew && now.Sub(p.LastActiveAt) > recencyWindow {
			continue
		}

		// interest overlap: any shared tag passes
		if len(criteria.Interests) > 0 && !sharesInterest(p.Interests, criteria.Interests) {
			continue
		}

		out = append(out, p)
	}

	return out
}

func sharesInterest(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
