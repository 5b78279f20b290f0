package strategy

import "strings"

// Build returns a rule implementation matching the configured mode.
func Build(mode string, maxRSI, minSentiment float64) Rule {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "two_sided", "twosided":
		return NewTwoSided(maxRSI, minSentiment)
	default:
		return NewThreshold(maxRSI, minSentiment)
	}
}
