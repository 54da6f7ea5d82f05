package discovery

// Feed pattern: three profile cards, then one sponsored card, looping.
const (
	patternLength    = 4
	profilesPerCycle = 3
)

// CardAt maps a view index to a card under the P-P-P-A pattern. Pure over
// its inputs: no cursor, no history. Decrementing the index (rewind)
// reproduces the prior card as long as the same pool snapshot is in effect.
// Both pools wrap via modulo, so entities recur once exhausted.
func CardAt(index int, pool RankedPool, sponsored []SponsoredItem) CardItem {
	if index < 0 || len(pool.Profiles) == 0 {
		return CardItem{Kind: CardEmpty, IdentityKey: emptyKey(index)}
	}

	position := index % patternLength
	cycle := index / patternLength

	if position < profilesPerCycle {
		profileIndex := (cycle*profilesPerCycle + position) % len(pool.Profiles)
		p := pool.Profiles[profileIndex]
		return CardItem{
			Kind:        CardProfile,
			Profile:     &p,
			IdentityKey: profileKey(index, p.ID),
		}
	}

	// sponsored slot; with no inventory the slot stays empty
	if len(sponsored) == 0 {
		return CardItem{Kind: CardEmpty, IdentityKey: emptyKey(index)}
	}
	ad := sponsored[cycle%len(sponsored)]
	return CardItem{
		Kind:        CardSponsored,
		Sponsored:   &ad,
		IdentityKey: sponsoredKey(index, ad.ID),
	}
}
