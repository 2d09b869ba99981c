package models

import "math"

const (
	MaxLevel   = 50
	XPPerLevel = 100
	// MaxXP is the global XP ceiling reached at MaxLevel.
	MaxXP = MaxLevel * XPPerLevel
)

// LevelThreshold returns the cumulative XP needed to be at level.
// Anything past MaxLevel is capped at MaxXP so that the XP left after the
// last level reads as zero.
func LevelThreshold(level int) int {
	if level >= MaxLevel+1 {
		return MaxXP
	}
	threshold := (level - 1) * XPPerLevel
	if threshold < 0 {
		return 0
	}
	return threshold
}

// LevelForXP returns the highest level whose threshold is covered by xp.
func LevelForXP(xp int) int {
	level := 1
	for level < MaxLevel && xp >= LevelThreshold(level+1) {
		level++
	}
	return level
}

// NormalizeLevel coerces a raw value into [1, MaxLevel]. Non-finite values
// fall back to level 1.
func NormalizeLevel(raw float64) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	raw = math.Trunc(raw)
	if raw < 1 {
		return 1
	}
	if raw > MaxLevel {
		return MaxLevel
	}
	return int(raw)
}

// XPBand returns the inclusive XP range allowed at level.
func XPBand(level int) (lower, upper int) {
	level = clampInt(level, 1, MaxLevel)
	lower = (level - 1) * XPPerLevel
	upper = level * XPPerLevel
	if upper > MaxXP {
		upper = MaxXP
	}
	return lower, upper
}

// ClampXPForLevel clamps rawXP into the band of level. Non-finite values fall
// back to the band floor.
func ClampXPForLevel(level int, rawXP float64) int {
	lower, upper := XPBand(level)
	if math.IsNaN(rawXP) || math.IsInf(rawXP, 0) {
		return lower
	}
	if rawXP < float64(lower) {
		return lower
	}
	if rawXP > float64(upper) {
		return upper
	}
	return int(math.Trunc(rawXP))
}

// XPToNextLevel reports how much XP separates xp from the next level.
// At MaxLevel it is always 0. Below it, a non-positive difference reports a
// full band instead.
func XPToNextLevel(level, xp int) int {
	if level >= MaxLevel {
		return 0
	}
	remaining := LevelThreshold(level+1) - xp
	if remaining <= 0 {
		return XPPerLevel
	}
	return remaining
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LevelUpReward returns the XP granted by a level-up. A finite positive
// reward is rounded and capped at one band; anything else grants a full band.
func LevelUpReward(xpReward *float64) int {
	if xpReward == nil {
		return XPPerLevel
	}
	r := *xpReward
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return XPPerLevel
	}
	rounded := math.Round(r)
	if rounded > XPPerLevel {
		return XPPerLevel
	}
	return int(rounded)
}
