package rewards

import (
	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
	"github.com/abhisek/goalpath/internal/tracking"
)

// XP granted per difficulty.
const (
	EasyXP   = 10
	MediumXP = 30
	HardXP   = 50
)

// BaseXP returns the XP value of completing a step of the given difficulty.
// Unknown difficulties are worth EasyXP.
func BaseXP(d model.Difficulty) int {
	switch d {
	case model.DifficultyMedium:
		return MediumXP
	case model.DifficultyHard:
		return HardXP
	default:
		return EasyXP
	}
}

// Delta returns the XP change for a step that is moving into
// (satisfiedAfter) or out of its completed state.
func Delta(step model.Step, satisfiedAfter bool) int {
	base := BaseXP(step.Difficulty)
	if satisfiedAfter {
		return base
	}
	return -base
}

// ToggleDelta returns the XP change that toggling step today will cause.
// It must be called with the step as it was before the toggle.
//
// The direction follows the raw state being flipped, not IsSatisfied: a
// weekly step satisfied by yesterday's check-in still gains XP when today
// is checked in.
func ToggleDelta(step model.Step, today calendar.Date) int {
	return Delta(step, !tracking.CheckedInOn(step, today))
}

// Apply adds delta to total. The result never drops below zero.
func Apply(total, delta int) int {
	return max(0, total+delta)
}
