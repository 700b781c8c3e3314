package models

// Interest labels categorize races and user preferences. The set is closed:
// anything else is rejected at the API boundary before it can be persisted.
const (
	InterestRoad         = "road"
	InterestTrail        = "trail"
	InterestSkyrace      = "skyrace"
	InterestVertical     = "vertical"
	InterestMarathon     = "marathon"
	InterestHalfMarathon = "halfmarathon"
	InterestUltratrail   = "ultratrail"
	InterestRelay        = "relay"
	InterestWalk         = "walk"
)

var interests = map[string]struct{}{
	InterestRoad:         {},
	InterestTrail:        {},
	InterestSkyrace:      {},
	InterestVertical:     {},
	InterestMarathon:     {},
	InterestHalfMarathon: {},
	InterestUltratrail:   {},
	InterestRelay:        {},
	InterestWalk:         {},
}

// ValidInterest reports whether s is a known interest/typology label.
func ValidInterest(s string) bool {
	_, ok := interests[s]
	return ok
}

// ValidInterests reports whether every label in the slice is known.
func ValidInterests(ss []string) bool {
	for _, s := range ss {
		if !ValidInterest(s) {
			return false
		}
	}
	return true
}

// Interests returns all known labels, for error messages and pickers.
func Interests() []string {
	return []string{
		InterestRoad, InterestTrail, InterestSkyrace, InterestVertical,
		InterestMarathon, InterestHalfMarathon, InterestUltratrail,
		InterestRelay, InterestWalk,
	}
}
