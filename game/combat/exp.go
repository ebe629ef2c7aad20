package combat

// ExperienceGain is the experience a kill adds to the pool. Enemies above
// the party's average level are worth more, those below less; the result
// never goes below zero.
func ExperienceGain(base, level, partyLevel int) int {
	if level < 1 {
		level = 1
	}
	gain := int(float64(base) + float64(level-partyLevel)*(float64(base)/float64(level)))
	if gain < 0 {
		return 0
	}
	return gain
}
