package carousel

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"gopkg.in/yaml.v3"
)

// Signature is a comparable snapshot of the inputs that shape the engine
// configuration. Equal signatures never require rebuilding the engine.
type Signature struct {
	// Count is the logical item count.
	Count int
	// Override is the canonical serialization of Params.Override.
	Override string
	// Params hashes the navigation parameters that change engine structure.
	Params uint64
}

// NewSignature snapshots count items rendered with params.
func NewSignature(count int, params Params) Signature {
	return Signature{
		Count:    count,
		Override: serializeOverride(params.Override),
		Params:   hashParams(params),
	}
}

func serializeOverride(o *Override) string {
	if o == nil {
		return ""
	}
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Sprintf("%+v", *o)
	}
	return string(data)
}

func hashParams(p Params) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeBool := func(b bool) {
		if b {
			writeUint(1)
		} else {
			writeUint(0)
		}
	}
	writeBool(p.Loop)
	writeUint(math.Float64bits(p.Rotation))
	writeUint(math.Float64bits(p.Depth))
	writeUint(uint64(p.MinItemsForLoop))
	writeUint(uint64(p.MinItemsForCircular))
	writeBool(p.SelectOnScroll)
	return h.Sum64()
}

// ShouldReinitialize reports whether moving from prev to cur requires a new
// engine instance. A nil prev is the first observation, which never does.
func ShouldReinitialize(prev *Signature, cur Signature) bool {
	if prev == nil {
		return false
	}
	return *prev != cur
}

// Detector remembers the last observed signature across renders.
// The zero value is ready to use.
type Detector struct {
	last *Signature
}

// Observe records cur and reports whether it differs from the previous observation.
func (d *Detector) Observe(cur Signature) bool {
	changed := ShouldReinitialize(d.last, cur)
	d.last = &cur
	return changed
}

// Last returns the most recently observed signature.
func (d *Detector) Last() (Signature, bool) {
	if d.last == nil {
		return Signature{}, false
	}
	return *d.last, true
}

// Reset forgets the last observation.
func (d *Detector) Reset() {
	d.last = nil
}
