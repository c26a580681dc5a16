package carousel

// Normalize maps a raw engine index, possibly pointing into clone space, to a
// logical index in [0, count). It reports false when count is not positive.
func Normalize(raw, count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	i := raw % count
	if i < 0 {
		i += count
	}
	return i, true
}
