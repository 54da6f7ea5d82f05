package discovery_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdating/ember-server/internal/discovery"
)

func rankedPool(ids ...uint64) discovery.RankedPool {
	profiles := make([]discovery.CandidateProfile, len(ids))
	for i, id := range ids {
		profiles[i] = discovery.CandidateProfile{ID: id}
	}
	return discovery.RankedPool{Generation: 1, Profiles: profiles}
}

func sponsoredPool(n int) []discovery.SponsoredItem {
	ads := make([]discovery.SponsoredItem, n)
	for i := range ads {
		ads[i] = discovery.SponsoredItem{ID: fmt.Sprintf("ad%d", i)}
	}
	return ads
}

func TestCardPatternThreeProfilesOneAd(t *testing.T) {
	pool := rankedPool(1, 2, 3, 4, 5)
	ads := sponsoredPool(2)

	for index := 0; index < 40; index++ {
		card := discovery.CardAt(index, pool, ads)
		if index%4 == 3 {
			assert.Equal(t, discovery.CardSponsored, card.Kind, "index %d", index)
		} else {
			assert.Equal(t, discovery.CardProfile, card.Kind, "index %d", index)
		}
	}
}

func TestCardSequenceExample(t *testing.T) {
	// ranked order P3, P1, P5, P2, P4
	pool := rankedPool(3, 1, 5, 2, 4)
	ads := sponsoredPool(3)

	expectProfile := func(index int, id uint64) {
		card := discovery.CardAt(index, pool, ads)
		require.Equal(t, discovery.CardProfile, card.Kind, "index %d", index)
		assert.Equal(t, id, card.Profile.ID, "index %d", index)
	}

	expectProfile(0, 3)
	expectProfile(1, 1)
	expectProfile(2, 5)

	ad := discovery.CardAt(3, pool, ads)
	require.Equal(t, discovery.CardSponsored, ad.Kind)
	assert.Equal(t, "ad0", ad.Sponsored.ID)

	// cycle 1, position 0 → profile index (1*3+0) mod 5 = 3 → P2
	expectProfile(4, 2)
}

func TestCardPoolsWrapAround(t *testing.T) {
	pool := rankedPool(1, 2)
	ads := sponsoredPool(2)

	// profile slots cycle 1,2,1,2,...
	assert.Equal(t, uint64(1), discovery.CardAt(0, pool, ads).Profile.ID)
	assert.Equal(t, uint64(2), discovery.CardAt(1, pool, ads).Profile.ID)
	assert.Equal(t, uint64(1), discovery.CardAt(2, pool, ads).Profile.ID)

	// ad slot alternates per cycle
	assert.Equal(t, "ad0", discovery.CardAt(3, pool, ads).Sponsored.ID)
	assert.Equal(t, "ad1", discovery.CardAt(7, pool, ads).Sponsored.ID)
	assert.Equal(t, "ad0", discovery.CardAt(11, pool, ads).Sponsored.ID)
}

func TestCardEmptyPool(t *testing.T) {
	card := discovery.CardAt(5, discovery.RankedPool{}, sponsoredPool(1))
	assert.Equal(t, discovery.CardEmpty, card.Kind)
	assert.Equal(t, "empty-5", card.IdentityKey)
}

func TestCardEmptySponsoredInventory(t *testing.T) {
	pool := rankedPool(1, 2, 3)

	profile := discovery.CardAt(0, pool, nil)
	assert.Equal(t, discovery.CardProfile, profile.Kind)

	slot := discovery.CardAt(3, pool, nil)
	assert.Equal(t, discovery.CardEmpty, slot.Kind)
}

func TestCardDeterministicAcrossRewinds(t *testing.T) {
	pool := rankedPool(1, 2, 3, 4, 5)
	ads := sponsoredPool(2)

	// walk forward, then query out of order: same index, same card
	forward := make([]discovery.CardItem, 20)
	for i := range forward {
		forward[i] = discovery.CardAt(i, pool, ads)
	}
	for _, i := range []int{13, 2, 19, 0, 7, 7, 4} {
		card := discovery.CardAt(i, pool, ads)
		assert.Equal(t, forward[i].IdentityKey, card.IdentityKey)
		assert.Equal(t, forward[i].Kind, card.Kind)
	}
}

func TestCardIdentityKeys(t *testing.T) {
	pool := rankedPool(7)
	ads := sponsoredPool(1)

	assert.Equal(t, "profile-0-7", discovery.CardAt(0, pool, ads).IdentityKey)
	assert.Equal(t, "sponsored-3-ad0", discovery.CardAt(3, pool, ads).IdentityKey)
}
