package discovery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdating/ember-server/internal/discovery"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// active candidate passing the default criteria
func candidate(id uint64) discovery.CandidateProfile {
	return discovery.CandidateProfile{
		ID:           id,
		Gender:       "female",
		Age:          28,
		DistanceKm:   10,
		LastActiveAt: now.Add(-time.Hour),
		JoinedAt:     now.Add(-30 * 24 * time.Hour),
	}
}

func criteria() discovery.FilterCriteria {
	return discovery.FilterCriteria{
		GenderPreference: "female",
		MaxDistanceKm:    50,
		MinAge:           18,
		MaxAge:           40,
	}
}

func noExclusions() discovery.ExclusionSets {
	return discovery.NewExclusionSets(nil, nil)
}

func TestPoolExcludesBlockedAndSwiped(t *testing.T) {
	profiles := []discovery.CandidateProfile{candidate(1), candidate(2), candidate(3)}
	excl := discovery.NewExclusionSets([]uint64{1}, []uint64{3})

	pool := discovery.BuildCandidatePool(profiles, criteria(), excl, now)

	require.Len(t, pool, 1)
	assert.Equal(t, uint64(2), pool[0].ID)
}

func TestPoolGenderPreference(t *testing.T) {
	male := candidate(1)
	male.Gender = "male"
	female := candidate(2)

	pool := discovery.BuildCandidatePool([]discovery.CandidateProfile{male, female}, criteria(), noExclusions(), now)
	require.Len(t, pool, 1)
	assert.Equal(t, uint64(2), pool[0].ID)

	everyone := criteria()
	everyone.GenderPreference = discovery.PrefEveryone
	pool = discovery.BuildCandidatePool([]discovery.CandidateProfile{male, female}, everyone, noExclusions(), now)
	assert.Len(t, pool, 2)
}

func TestPoolDistanceIsHardCutoff(t *testing.T) {
	far := candidate(1)
	far.DistanceKm = 51
	far.PopularityScore = 100
	far.HasLikedViewer = true // no boost overrides the radius

	pool := discovery.BuildCandidatePool([]discovery.CandidateProfile{far}, criteria(), noExclusions(), now)
	assert.Empty(t, pool)
}

func TestPoolAgeRangeInclusive(t *testing.T) {
	atMin := candidate(1)
	atMin.Age = 18
	atMax := candidate(2)
	atMax.Age = 40
	tooOld := candidate(3)
	tooOld.Age = 41

	pool := discovery.BuildCandidatePool([]discovery.CandidateProfile{atMin, atMax, tooOld}, criteria(), noExclusions(), now)
	require.Len(t, pool, 2)
	assert.Equal(t, uint64(1), pool[0].ID)
	assert.Equal(t, uint64(2), pool[1].ID)
}

func TestPoolStaleProfilesFiltered(t *testing.T) {
	stale := candidate(1)
	stale.LastActiveAt = now.Add(-8 * 24 * time.Hour)

	pool := discovery.BuildCandidatePool([]discovery.CandidateProfile{stale}, criteria(), noExclusions(), now)
	assert.Empty(t, pool)
}

func TestPoolNewAccountBypassesStaleness(t *testing.T) {
	// never active, but joined a day ago
	fresh := candidate(1)
	fresh.JoinedAt = now.Add(-24 * time.Hour)
	fresh.LastActiveAt = now.Add(-30 * 24 * time.Hour)

	pool := discovery.BuildCandidatePool([]discovery.CandidateProfile{fresh}, criteria(), noExclusions(), now)
	assert.Len(t, pool, 1)
}

func TestPoolInterestFilterAnyOverlap(t *testing.T) {
	hiker := candidate(1)
	hiker.Interests = []string{"hiking", "cinema"}
	cook := candidate(2)
	cook.Interests = []string{"cooking"}
	none := candidate(3)

	withInterests := criteria()
	withInterests.Interests = []string{"hiking", "yoga"}

	pool := discovery.BuildCandidatePool([]discovery.CandidateProfile{hiker, cook, none}, withInterests, noExclusions(), now)
	require.Len(t, pool, 1)
	assert.Equal(t, uint64(1), pool[0].ID)

	// empty filter set applies no interest filter at all
	pool = discovery.BuildCandidatePool([]discovery.CandidateProfile{hiker, cook, none}, criteria(), noExclusions(), now)
	assert.Len(t, pool, 3)
}

func TestCriteriaValidation(t *testing.T) {
	bad := criteria()
	bad.MinAge = 40
	bad.MaxAge = 20
	assert.Error(t, bad.Validate())

	negative := criteria()
	negative.MaxDistanceKm = -1
	assert.Error(t, negative.Validate())

	assert.NoError(t, criteria().Validate())
}

func TestEmptyPoolIsNotAnError(t *testing.T) {
	pool, err := discovery.BuildRankedPool(nil, criteria(), noExclusions(), 1, now)
	require.NoError(t, err)
	assert.Empty(t, pool.Profiles)
	assert.Equal(t, uint64(1), pool.Generation)
}
