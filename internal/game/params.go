package game

import (
	"errors"
	"fmt"
)

// Params holds the tuning constants of the ball physics and the fall
// animation. Distances are in board units, times in seconds, angles in
// radians.
type Params struct {
	BallRadius float64 `json:"ball_radius"`
	HoleRadius float64 `json:"hole_radius"`
	// AccelCoeff converts a tilt angle into ball acceleration.
	AccelCoeff float64 `json:"accel_coeff"`
	// BounceCoeff is the fraction of the normal velocity kept after a bounce.
	BounceCoeff float64 `json:"bounce_coeff"`
	// MaxAngle bounds both tilt angles to [-MaxAngle, MaxAngle].
	MaxAngle float64 `json:"max_angle"`

	RollOverDuration float64 `json:"roll_over_duration"`
	FreeFallDuration float64 `json:"free_fall_duration"`
	FreeFallDepth    float64 `json:"free_fall_depth"`
}

const (
	DefaultBallRadius  = 20.0
	DefaultHoleRadius  = 24.0
	DefaultAccelCoeff  = 3000.0
	DefaultBounceCoeff = 0.2
	DefaultMaxAngle    = 0.1

	DefaultRollOverDuration = 0.1
	DefaultFreeFallDuration = 0.1
)

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		BallRadius:       DefaultBallRadius,
		HoleRadius:       DefaultHoleRadius,
		AccelCoeff:       DefaultAccelCoeff,
		BounceCoeff:      DefaultBounceCoeff,
		MaxAngle:         DefaultMaxAngle,
		RollOverDuration: DefaultRollOverDuration,
		FreeFallDuration: DefaultFreeFallDuration,
		FreeFallDepth:    3 * DefaultBallRadius,
	}
}

// TotalFallDuration is how long the lost-state animation runs.
func (p Params) TotalFallDuration() float64 {
	return p.RollOverDuration + p.FreeFallDuration
}

// Validate rejects parameter sets the physics cannot run with. Game itself
// assumes its Params already passed this check.
func (p Params) Validate() error {
	var errs []error
	if p.BallRadius <= 0 {
		errs = append(errs, fmt.Errorf("ball radius must be positive, got %g", p.BallRadius))
	}
	if p.HoleRadius <= 0 {
		errs = append(errs, fmt.Errorf("hole radius must be positive, got %g", p.HoleRadius))
	}
	if p.BounceCoeff < 0 || p.BounceCoeff > 1 {
		errs = append(errs, fmt.Errorf("bounce coefficient must be within [0, 1], got %g", p.BounceCoeff))
	}
	if p.MaxAngle <= 0 {
		errs = append(errs, fmt.Errorf("max angle must be positive, got %g", p.MaxAngle))
	}
	if p.RollOverDuration <= 0 || p.FreeFallDuration <= 0 {
		errs = append(errs, fmt.Errorf("fall durations must be positive, got %g and %g", p.RollOverDuration, p.FreeFallDuration))
	}
	if p.FreeFallDepth < 0 {
		errs = append(errs, fmt.Errorf("free fall depth must not be negative, got %g", p.FreeFallDepth))
	}
	return errors.Join(errs...)
}
