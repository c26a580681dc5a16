// Package carousel keeps a looping slide view consistent while its items and
// parameters change between renders.
//
// Three things change independently: the logical item list the host supplies,
// the slide engine's raw index space (which may contain clones appended to make
// looping smooth), and whether the live engine instance has to be rebuilt.
// The package splits that work into small pure pieces and one stateful owner:
//
//   - [SelectMode] picks simple (linear) or circular navigation.
//   - [Build] derives an [EngineConfig] for the mode and merges an [Override].
//   - [Signature] and [Detector] decide when the live engine must be rebuilt.
//   - [Inflate] computes the clone-inflated raw [Layout] an engine renders.
//   - [Normalize] maps raw engine indices back to logical indices.
//   - [Controller] owns at most one live engine instance and relays
//     normalized index changes to the host.
//
// # Lifecycle
//
// The controller follows this state machine:
//
//	Uninitialized ──► Initializing ──► Ready ◄──► Reinitializing
//	                                     │
//	                         items empty │ or Dispose
//	                                     ▼
//	                                 Destroyed
//
// Engine calls run off the caller's goroutine. Completions and engine index
// callbacks are delivered through a [Dispatcher] so hosts with a UI thread can
// apply them there:
//
//	ctrl := carousel.NewController(engine,
//	    carousel.WithDispatcher(ui.Dispatch),
//	)
//	ctrl.OnItemChanged(func(it items.Item) { caption.Set(it.Title) })
//	if err := ctrl.Update(list, carousel.DefaultParams()); err != nil {
//	    // invalid parameters; the update was rejected
//	}
package carousel
