package carousel

import "fmt"

// Mode is the navigation style of a carousel.
type Mode int

const (
	// ModeSimple is a linear strip with a few visible slides and no wrap-around.
	ModeSimple Mode = iota
	// ModeCircular is the coverflow layout where the last item may wrap to the first.
	ModeCircular
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeCircular:
		return "circular"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// SelectMode chooses the navigation mode for count items.
// Without auto-detection the carousel is always circular; with it, collections
// smaller than threshold fall back to simple mode.
func SelectMode(count int, autoDetect bool, threshold int) Mode {
	if autoDetect && count < threshold {
		return ModeSimple
	}
	return ModeCircular
}
