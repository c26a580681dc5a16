package carousel

import (
	stderrors "errors"

	"github.com/go-drift/slides/pkg/errors"
)

// Params are the navigation parameters a host passes on every render.
type Params struct {
	// Loop requests wrap-around navigation. It only takes effect in circular
	// mode with at least MinItemsForLoop items.
	Loop bool `yaml:"loop"`
	// Rotation is the coverflow slide rotation in degrees, within [0, 360].
	Rotation float64 `yaml:"rotation"`
	// Depth is the coverflow depth offset; must not be negative.
	Depth float64 `yaml:"depth"`
	// MinItemsForLoop is the smallest item count that enables looping.
	MinItemsForLoop int `yaml:"min_items_for_loop"`
	// MinItemsForCircular is the auto-detect threshold for circular mode.
	MinItemsForCircular int `yaml:"min_items_for_circular"`
	// AutoDetectMode enables falling back to simple mode for small collections.
	AutoDetectMode bool `yaml:"auto_detect_mode"`
	// InitialIndex is the logical index shown after the first initialization.
	InitialIndex int `yaml:"initial_index"`
	// SelectOnScroll also emits item-selected whenever the active slide changes.
	SelectOnScroll bool `yaml:"select_on_scroll"`
	// Override optionally adjusts the derived engine configuration.
	Override *Override `yaml:"engine,omitempty"`
}

// DefaultParams returns the parameters used when the host sets none.
func DefaultParams() Params {
	return Params{
		Loop:                true,
		Rotation:            50,
		Depth:               100,
		MinItemsForLoop:     3,
		MinItemsForCircular: 3,
		AutoDetectMode:      true,
	}
}

// Validate reports every parameter the engine cannot be initialized with,
// including the Override fields that are bound by the same ranges.
// The returned error contains one *errors.ConfigError per violation.
func (p Params) Validate() error {
	var errs []error
	if p.Rotation < 0 || p.Rotation > 360 {
		errs = append(errs, &errors.ConfigError{Field: "Rotation", Value: p.Rotation, Reason: "must be within [0, 360]"})
	}
	if p.Depth < 0 {
		errs = append(errs, &errors.ConfigError{Field: "Depth", Value: p.Depth, Reason: "must not be negative"})
	}
	if p.MinItemsForLoop <= 0 {
		errs = append(errs, &errors.ConfigError{Field: "MinItemsForLoop", Value: p.MinItemsForLoop, Reason: "must be positive"})
	}
	if p.MinItemsForCircular <= 0 {
		errs = append(errs, &errors.ConfigError{Field: "MinItemsForCircular", Value: p.MinItemsForCircular, Reason: "must be positive"})
	}
	if p.InitialIndex < 0 {
		errs = append(errs, &errors.ConfigError{Field: "InitialIndex", Value: p.InitialIndex, Reason: "must not be negative"})
	}
	if o := p.Override; o != nil {
		if o.Rotate < 0 || o.Rotate > 360 {
			errs = append(errs, &errors.ConfigError{Field: "Override.Rotate", Value: o.Rotate, Reason: "must be within [0, 360]"})
		}
		if o.Depth < 0 {
			errs = append(errs, &errors.ConfigError{Field: "Override.Depth", Value: o.Depth, Reason: "must not be negative"})
		}
		if o.InitialSlide < 0 {
			errs = append(errs, &errors.ConfigError{Field: "Override.InitialSlide", Value: o.InitialSlide, Reason: "must not be negative"})
		}
		if o.Speed < 0 {
			errs = append(errs, &errors.ConfigError{Field: "Override.Speed", Value: o.Speed, Reason: "must not be negative"})
		}
	}
	return stderrors.Join(errs...)
}
