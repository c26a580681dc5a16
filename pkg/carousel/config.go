package carousel

import "time"

// Effect is the slide transition style of the engine.
type Effect string

const (
	EffectSlide     Effect = "slide"
	EffectCoverflow Effect = "coverflow"
)

// AutoSlidesPerView lets the engine size slides from their content.
const AutoSlidesPerView = 0

const (
	simpleMaxVisible = 3
	simpleSpacing    = 16
	simpleSpeed      = 400 * time.Millisecond
	circularSpeed    = 300 * time.Millisecond

	// denseThreshold is the item count above which the coverflow modifier grows.
	denseThreshold  = 5
	defaultModifier = 1
	denseModifier   = 1.5
)

// EngineConfig is the configuration handed to the slide engine on each
// (re)initialization. It is a value; the engine must not retain pointers into it.
type EngineConfig struct {
	Effect        Effect        `yaml:"effect"`
	SlidesPerView int           `yaml:"slides_per_view"`
	Centered      bool          `yaml:"centered"`
	Loop          bool          `yaml:"loop"`
	SpaceBetween  float64       `yaml:"space_between"`
	Rotate        float64       `yaml:"rotate"`
	Depth         float64       `yaml:"depth"`
	Modifier      float64       `yaml:"modifier"`
	Speed         time.Duration `yaml:"speed"`
	TouchRatio    float64       `yaml:"touch_ratio"`
	InitialSlide  int           `yaml:"initial_slide"`
}

// Override adjusts a derived EngineConfig. Zero numeric fields keep the
// derived value. Effect, Loop and SlidesPerView are accepted for
// compatibility but always reset to the mode's value by Merge.
type Override struct {
	Effect        Effect        `yaml:"effect,omitempty"`
	SlidesPerView int           `yaml:"slides_per_view,omitempty"`
	Loop          *bool         `yaml:"loop,omitempty"`
	Centered      *bool         `yaml:"centered,omitempty"`
	SpaceBetween  float64       `yaml:"space_between,omitempty"`
	Rotate        float64       `yaml:"rotate,omitempty"`
	Depth         float64       `yaml:"depth,omitempty"`
	Modifier      float64       `yaml:"modifier,omitempty"`
	Speed         time.Duration `yaml:"speed,omitempty"`
	TouchRatio    float64       `yaml:"touch_ratio,omitempty"`
	InitialSlide  int           `yaml:"initial_slide,omitempty"`
}

// Build derives the engine configuration for count items in the given mode,
// then applies params.Override.
func Build(mode Mode, count int, params Params) EngineConfig {
	var cfg EngineConfig
	switch mode {
	case ModeSimple:
		cfg = EngineConfig{
			Effect:        EffectSlide,
			SlidesPerView: min(simpleMaxVisible, max(count, 1)),
			Centered:      true,
			SpaceBetween:  simpleSpacing,
			Speed:         simpleSpeed,
			TouchRatio:    1,
		}
	default:
		modifier := float64(defaultModifier)
		if count > denseThreshold {
			modifier = denseModifier
		}
		cfg = EngineConfig{
			Effect:        EffectCoverflow,
			SlidesPerView: AutoSlidesPerView,
			Centered:      true,
			Loop:          params.Loop && count >= params.MinItemsForLoop,
			Rotate:        params.Rotation,
			Depth:         params.Depth,
			Modifier:      modifier,
			Speed:         circularSpeed,
			TouchRatio:    1,
		}
	}
	cfg.InitialSlide = clampIndex(params.InitialIndex, count)
	cfg = Merge(cfg, params.Override)
	cfg.InitialSlide = clampIndex(cfg.InitialSlide, count)
	return cfg
}

// Merge applies o over base. The mode-governed fields Effect, Loop and
// SlidesPerView always keep the base value; zero numeric fields in o fall
// back to base.
func Merge(base EngineConfig, o *Override) EngineConfig {
	if o == nil {
		return base
	}
	out := base
	if o.Centered != nil {
		out.Centered = *o.Centered
	}
	out.SpaceBetween = orFloat(o.SpaceBetween, base.SpaceBetween)
	out.Rotate = orFloat(o.Rotate, base.Rotate)
	out.Depth = orFloat(o.Depth, base.Depth)
	out.Modifier = orFloat(o.Modifier, base.Modifier)
	out.TouchRatio = orFloat(o.TouchRatio, base.TouchRatio)
	if o.Speed != 0 {
		out.Speed = o.Speed
	}
	if o.InitialSlide != 0 {
		out.InitialSlide = o.InitialSlide
	}

	out.Effect = base.Effect
	out.Loop = base.Loop
	out.SlidesPerView = base.SlidesPerView
	return out
}

func orFloat(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func clampIndex(i, count int) int {
	if count <= 0 || i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}
