package models

import (
	"fmt"
	"strings"

	"zelia-app/internal/utils/validator"
)

// LevelUpRequest completes the caller's current level.
type LevelUpRequest struct {
	XPReward *float64 `json:"xp_reward" validate:"omitempty"`
}

// InternalLevelUpRequest is the service-to-service level-up, which may move
// a user straight to MinLevel.
type InternalLevelUpRequest struct {
	MinLevel *int     `json:"min_level" validate:"omitempty,min=1,max=50"`
	XPReward *float64 `json:"xp_reward" validate:"omitempty"`
}

type CompleteLevelRequest struct {
	XPReward *float64 `json:"xp_reward" validate:"omitempty"`
}

type AwardXPRequest struct {
	XP int `json:"xp" validate:"required,gt=0,lte=5000"`
}

// Validate runs the struct tags of any request above.
func Validate(req interface{}) error {
	err := validator.GetValidator().Struct(req)
	if err != nil {
		errs := validator.ParseErrors(err)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, " // "))
	}

	return nil
}
