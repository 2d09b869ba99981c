package models

// DefaultPaidGateLevel is the last level playable without payment.
const DefaultPaidGateLevel = 10

type AccessRequest struct {
	TargetLevel   int
	Progression   Progression
	HasPaid       bool
	PaidGateLevel int
}

type AccessDecision struct {
	TargetLevel  int  `json:"target_level"`
	CurrentLevel int  `json:"current_level"`
	Accessible   bool `json:"accessible"`
	Replay       bool `json:"replay"`
	Paywalled    bool `json:"paywalled"`
}

func gateLevel(paidGateLevel int) int {
	if paidGateLevel <= 0 {
		return DefaultPaidGateLevel
	}
	return paidGateLevel
}

// EvaluateAccess decides whether the user may enter TargetLevel. Reached
// levels can be replayed and the level right after the current one can be
// started; both stay behind the paywall past the gate level when unpaid.
// Anything further ahead is refused.
func EvaluateAccess(req AccessRequest) AccessDecision {
	target := NormalizeLevel(float64(req.TargetLevel))
	current := NormalizeLevel(float64(req.Progression.Level))
	paywalled := target > gateLevel(req.PaidGateLevel) && !req.HasPaid

	d := AccessDecision{
		TargetLevel:  target,
		CurrentLevel: current,
		Replay:       target <= current,
		Paywalled:    paywalled,
	}
	switch {
	case target <= current, target == current+1:
		d.Accessible = !paywalled
	default:
		d.Accessible = false
	}
	return d
}

func IsLevelAccessible(req AccessRequest) bool {
	return EvaluateAccess(req).Accessible
}

// ComputeNextPlayableLevel returns the stored level, lowered to the highest
// level the user is entitled to play.
func ComputeNextPlayableLevel(p Progression, hasPaid bool, paidGateLevel int) int {
	ceiling := MaxLevel
	if !hasPaid {
		ceiling = gateLevel(paidGateLevel)
	}
	level := NormalizeLevel(float64(p.Level))
	if level > ceiling {
		return ceiling
	}
	return level
}

// AccessibleLevels lists every level the user may open right now, used to
// unlock navigation entries.
func AccessibleLevels(p Progression, hasPaid bool, paidGateLevel int) []int {
	levels := []int{}
	for level := 1; level <= MaxLevel; level++ {
		req := AccessRequest{TargetLevel: level, Progression: p, HasPaid: hasPaid, PaidGateLevel: paidGateLevel}
		if IsLevelAccessible(req) {
			levels = append(levels, level)
		}
	}
	return levels
}
