package domain

import (
	"math"
	"time"
)

// Band buckets the strength score for display.
type Band string

const (
	BandStrong Band = "strong"
	BandActive Band = "active"
	BandWarm   Band = "warm"
	BandCold   Band = "cold"
)

// Score thresholds for the bands.
const (
	strongThreshold = 70.0
	activeThreshold = 40.0
	warmThreshold   = 15.0
)

// recencyHalfLife controls how fast the recency component decays: after 30
// days without contact it is worth half its maximum.
const recencyHalfLife = 30.0

// ComputeStrength scores a relationship from 0 to 100.
//
// Recency contributes up to 60 points with exponential decay over days since
// the last interaction. Frequency contributes up to 40 points, saturating at
// 20 interactions in the trailing 90 days. A contact with no interactions
// scores zero.
func ComputeStrength(lastInteractionAt *time.Time, countLast90Days int, now time.Time) float64 {
	if lastInteractionAt == nil {
		return 0
	}

	days := now.Sub(*lastInteractionAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	recency := 60.0 * math.Exp(-math.Ln2*days/recencyHalfLife)

	count := countLast90Days
	if count > 20 {
		count = 20
	}
	frequency := 40.0 * float64(count) / 20.0

	return math.Round((recency+frequency)*10) / 10
}

// BandFor maps a score to its display band.
func BandFor(strength float64) Band {
	switch {
	case strength >= strongThreshold:
		return BandStrong
	case strength >= activeThreshold:
		return BandActive
	case strength >= warmThreshold:
		return BandWarm
	default:
		return BandCold
	}
}
