package carousel

// CloneOptions control how many raw slides a looping engine needs.
type CloneOptions struct {
	// Minimum is the raw slide count below which the engine cannot loop smoothly.
	Minimum int
	// SafetyMargin is the number of extra raw slides added past Minimum.
	SafetyMargin int
}

// DefaultCloneOptions matches the coverflow engine's loop requirements.
var DefaultCloneOptions = CloneOptions{Minimum: 7, SafetyMargin: 2}

// Slide is one raw engine slide.
type Slide struct {
	// Logical is the index of the item this slide renders.
	Logical int
	// Clone marks a duplicate appended for looping.
	Clone bool
}

// Layout is the raw slide sequence an engine renders for a logical sequence.
type Layout struct {
	Slides        []Slide
	OriginalCount int
	CloneCount    int
}

// RawCount returns the number of raw slides.
func (l Layout) RawCount() int {
	return len(l.Slides)
}

// Normalize maps a raw index of this layout to a logical index.
func (l Layout) Normalize(raw int) (int, bool) {
	return Normalize(raw, l.OriginalCount)
}

// Inflate lays out count logical items. When loop is requested with fewer
// items than opts.Minimum, cyclic copies of the sequence prefix are appended
// until the raw length reaches opts.Minimum+opts.SafetyMargin. The result
// depends only on its arguments.
func Inflate(count int, loop bool, opts CloneOptions) Layout {
	if count <= 0 {
		return Layout{}
	}
	target := count
	if loop && count < opts.Minimum {
		target = max(count, opts.Minimum+opts.SafetyMargin)
	}
	l := Layout{
		Slides:        make([]Slide, target),
		OriginalCount: count,
		CloneCount:    target - count,
	}
	for i := range l.Slides {
		l.Slides[i] = Slide{Logical: i % count, Clone: i >= count}
	}
	return l
}
