package carousel_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/go-drift/slides/pkg/carousel"
	"github.com/go-drift/slides/pkg/carousel/simengine"
	"github.com/go-drift/slides/pkg/errors"
	"github.com/go-drift/slides/pkg/items"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func photos(n int) []items.Item {
	out := make([]items.Item, n)
	for i := range out {
		out[i] = items.Item{Image: fmt.Sprintf("photo-%d.jpg", i), Title: fmt.Sprintf("Photo %d", i)}
	}
	return out
}

type recorder struct {
	mu       sync.Mutex
	indices  []int
	items    []items.Item
	selected []items.Item
}

func record(c *carousel.Controller) *recorder {
	r := &recorder{}
	c.OnIndexChanged(func(i int) {
		r.mu.Lock()
		r.indices = append(r.indices, i)
		r.mu.Unlock()
	})
	c.OnItemChanged(func(it items.Item) {
		r.mu.Lock()
		r.items = append(r.items, it)
		r.mu.Unlock()
	})
	c.OnItemSelected(func(it items.Item) {
		r.mu.Lock()
		r.selected = append(r.selected, it)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) snapshot() (indices []int, changed, selected []items.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.indices...),
		append([]items.Item(nil), r.items...),
		append([]items.Item(nil), r.selected...)
}

type captureHandler struct {
	mu   sync.Mutex
	errs []*errors.SlidesError
}

func (h *captureHandler) HandleError(err *errors.SlidesError) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *captureHandler) HandlePanic(*errors.PanicError) {}

func (h *captureHandler) kinds() []errors.ErrorKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []errors.ErrorKind
	for _, e := range h.errs {
		out = append(out, e.Kind)
	}
	return out
}

func (h *captureHandler) reported() []*errors.SlidesError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*errors.SlidesError(nil), h.errs...)
}

func assertStaleReports(t *testing.T, h *captureHandler, want int) {
	t.Helper()
	got := h.reported()
	if len(got) != want {
		t.Fatalf("reported %d errors, want %d stale callbacks: %v", len(got), want, h.kinds())
	}
	for _, err := range got {
		if err.Kind != errors.KindStale || !stderrors.Is(err, errors.ErrStaleCallback) {
			t.Errorf("reported %v, want a stale callback", err)
		}
	}
}

func captureErrors(t *testing.T) *captureHandler {
	t.Helper()
	h := &captureHandler{}
	old := errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(old) })
	return h
}

func newController(t *testing.T, eng *simengine.Engine, opts ...carousel.Option) *carousel.Controller {
	t.Helper()
	c := carousel.NewController(eng, opts...)
	t.Cleanup(func() {
		c.Dispose()
		c.Wait()
	})
	return c
}

func mustUpdate(t *testing.T, c *carousel.Controller, list []items.Item, p carousel.Params) {
	t.Helper()
	if err := c.Update(list, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	c.Wait()
}

func TestControllerInitializes(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	rec := record(c)

	if c.State() != carousel.StateUninitialized {
		t.Fatalf("initial state = %v", c.State())
	}
	mustUpdate(t, c, photos(4), carousel.DefaultParams())

	if c.State() != carousel.StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
	if got := eng.Stats(); got.Initializes != 1 || got.Destroys != 0 {
		t.Errorf("stats = %+v", got)
	}
	if eng.Live() != 1 {
		t.Errorf("live instances = %d, want 1", eng.Live())
	}
	indices, changed, selected := rec.snapshot()
	if diff := cmp.Diff([]int{0}, indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if len(changed) != 1 || changed[0].Title != "Photo 0" {
		t.Errorf("changed items = %+v", changed)
	}
	if len(selected) != 0 {
		t.Errorf("selection emitted without SelectOnScroll: %+v", selected)
	}
}

func TestControllerEmptyFirstRenderStaysUninitialized(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	mustUpdate(t, c, nil, carousel.DefaultParams())
	if c.State() != carousel.StateUninitialized {
		t.Errorf("state = %v, want uninitialized", c.State())
	}
	if eng.Stats().Initializes != 0 {
		t.Error("engine initialized without items")
	}
}

func TestControllerIdenticalRendersDoNotReinitialize(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	for i := 0; i < 5; i++ {
		mustUpdate(t, c, photos(4), p)
	}
	if got := eng.Stats().Initializes; got != 1 {
		t.Errorf("Initializes = %d, want 1", got)
	}
}

func TestControllerRotationChangeReinitializes(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	p.Rotation = 50
	mustUpdate(t, c, photos(4), p)
	gen := c.Generation()

	p.Rotation = 90
	mustUpdate(t, c, photos(4), p)

	if c.State() != carousel.StateReady {
		t.Fatalf("state = %v", c.State())
	}
	stats := eng.Stats()
	if stats.Initializes != 2 || stats.Destroys != 1 {
		t.Errorf("stats = %+v, want 2 initializes and 1 destroy", stats)
	}
	if stats.MaxLive != 1 {
		t.Errorf("MaxLive = %d, want 1", stats.MaxLive)
	}
	inst, ok := eng.Instance(c.Container())
	if !ok || inst.Config.Rotate != 90 {
		t.Errorf("live instance rotate = %v (ok=%v), want 90", inst.Config.Rotate, ok)
	}
	if c.Generation() <= gen {
		t.Error("generation did not advance")
	}
}

func TestControllerEachSignatureChangeReinitializes(t *testing.T) {
	changes := []struct {
		name   string
		count  int
		mutate func(*carousel.Params)
	}{
		{"count", 5, func(*carousel.Params) {}},
		{"override", 4, func(p *carousel.Params) { p.Override = &carousel.Override{TouchRatio: 2} }},
		{"depth", 4, func(p *carousel.Params) { p.Depth = 10 }},
		{"select on scroll", 4, func(p *carousel.Params) { p.SelectOnScroll = true }},
	}
	for _, tt := range changes {
		t.Run(tt.name, func(t *testing.T) {
			eng := simengine.New()
			c := newController(t, eng)
			p := carousel.DefaultParams()
			mustUpdate(t, c, photos(4), p)
			tt.mutate(&p)
			mustUpdate(t, c, photos(tt.count), p)
			if got := eng.Stats().Initializes; got != 2 {
				t.Errorf("Initializes = %d, want 2", got)
			}
		})
	}
}

func TestControllerEmptyItemsDestroys(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	mustUpdate(t, c, photos(5), p)
	mustUpdate(t, c, nil, p)

	if c.State() != carousel.StateDestroyed {
		t.Errorf("state = %v, want destroyed", c.State())
	}
	if eng.Live() != 0 {
		t.Errorf("live = %d after empty render", eng.Live())
	}
	if _, ok := c.ActiveItem(); ok {
		t.Error("ActiveItem reported an item with no items")
	}

	mustUpdate(t, c, photos(2), p)
	if c.State() != carousel.StateReady || eng.Live() != 1 {
		t.Errorf("after refill state = %v live = %d", c.State(), eng.Live())
	}
}

func TestControllerRejectsInvalidParams(t *testing.T) {
	h := captureErrors(t)
	eng := simengine.New()
	c := newController(t, eng)
	mustUpdate(t, c, photos(3), carousel.DefaultParams())

	bad := carousel.DefaultParams()
	bad.Rotation = 400
	err := c.Update(photos(3), bad)
	if !errors.IsConfigError(err) {
		t.Fatalf("Update(bad) = %v, want ConfigError", err)
	}
	c.Wait()
	if got := eng.Stats().Initializes; got != 1 {
		t.Errorf("rejected update reached the engine: Initializes = %d", got)
	}
	if c.Config().Rotate != 50 {
		t.Errorf("rejected update changed config: rotate = %v", c.Config().Rotate)
	}
	if diff := cmp.Diff([]errors.ErrorKind{errors.KindConfig}, h.kinds()); diff != "" {
		t.Errorf("reported kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerRejectsInvalidOverride(t *testing.T) {
	captureErrors(t)
	tests := []struct {
		name     string
		override carousel.Override
		field    string
	}{
		{"rotate above range", carousel.Override{Rotate: 720}, "Override.Rotate"},
		{"negative depth", carousel.Override{Depth: -50}, "Override.Depth"},
		{"negative initial slide", carousel.Override{InitialSlide: -3}, "Override.InitialSlide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := simengine.New()
			c := newController(t, eng)
			p := carousel.DefaultParams()
			p.Override = &tt.override

			err := c.Update(photos(4), p)
			var ce *errors.ConfigError
			if !stderrors.As(err, &ce) || ce.Field != tt.field {
				t.Fatalf("Update = %v, want ConfigError on %s", err, tt.field)
			}
			c.Wait()
			if got := eng.Stats().Initializes; got != 0 {
				t.Errorf("rejected override reached the engine: Initializes = %d", got)
			}
		})
	}
}

func TestControllerClampsInitialSlideOverride(t *testing.T) {
	eng := simengine.New()
	eng.Silent = true
	c := newController(t, eng)
	p := carousel.DefaultParams()
	p.Override = &carousel.Override{InitialSlide: 9}
	mustUpdate(t, c, photos(4), p)

	if got := c.Config().InitialSlide; got != 3 {
		t.Errorf("InitialSlide = %d, want 3", got)
	}
	if got := c.ActiveIndex(); got != 3 {
		t.Errorf("ActiveIndex = %d, want 3", got)
	}
	it, ok := c.ActiveItem()
	if !ok || it != photos(4)[3] {
		t.Errorf("ActiveItem = %v, %v; want item 3", it, ok)
	}
}

func TestControllerReportsLiveConfigUntilRebuilt(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	mustUpdate(t, c, photos(2), p)
	if c.Mode() != carousel.ModeSimple || c.Config().Effect != carousel.EffectSlide {
		t.Fatalf("initial mode = %v effect = %v, want simple slide", c.Mode(), c.Config().Effect)
	}

	// AutoDetectMode is not part of the change signature.
	p.AutoDetectMode = false
	mustUpdate(t, c, photos(2), p)
	if got := eng.Stats().Initializes; got != 1 {
		t.Fatalf("Initializes = %d, want 1", got)
	}
	inst, ok := eng.Instance(c.Container())
	if !ok || inst.Config.Effect != carousel.EffectSlide {
		t.Fatalf("live instance = %+v, %v", inst, ok)
	}
	if c.Mode() != carousel.ModeSimple || c.Config().Effect != carousel.EffectSlide {
		t.Errorf("mode = %v effect = %v, want the live engine's simple slide", c.Mode(), c.Config().Effect)
	}

	p.Rotation = 90
	mustUpdate(t, c, photos(2), p)
	if c.Mode() != carousel.ModeCircular || c.Config().Effect != carousel.EffectCoverflow {
		t.Errorf("after rebuild mode = %v effect = %v, want circular coverflow", c.Mode(), c.Config().Effect)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
}

func TestControllerInitFailureIsRetryable(t *testing.T) {
	h := captureErrors(t)
	eng := simengine.New()
	eng.FailNext(stderrors.New("no surface"))
	c := newController(t, eng)
	p := carousel.DefaultParams()

	mustUpdate(t, c, photos(3), p)
	if c.State() != carousel.StateUninitialized {
		t.Fatalf("state after failure = %v, want uninitialized", c.State())
	}
	if diff := cmp.Diff([]errors.ErrorKind{errors.KindInit}, h.kinds()); diff != "" {
		t.Errorf("reported kinds mismatch (-want +got):\n%s", diff)
	}

	mustUpdate(t, c, photos(3), p)
	if c.State() != carousel.StateReady {
		t.Errorf("state after retry = %v, want ready", c.State())
	}
}

func TestControllerFailedReinitializeDestroysOldFirst(t *testing.T) {
	captureErrors(t)
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	mustUpdate(t, c, photos(4), p)

	eng.FailNext(stderrors.New("gpu lost"))
	p.Depth = 10
	mustUpdate(t, c, photos(4), p)

	if eng.Live() != 0 {
		t.Errorf("live = %d after failed reinitialize, want 0", eng.Live())
	}
	if eng.Stats().MaxLive != 1 {
		t.Errorf("MaxLive = %d, want 1", eng.Stats().MaxLive)
	}
	if c.State() != carousel.StateUninitialized {
		t.Errorf("state = %v, want uninitialized", c.State())
	}

	mustUpdate(t, c, photos(4), p)
	if c.State() != carousel.StateReady || eng.Live() != 1 {
		t.Errorf("retry: state = %v live = %d", c.State(), eng.Live())
	}
}

func TestControllerEnginePanicIsContained(t *testing.T) {
	h := captureErrors(t)
	eng := simengine.New()
	eng.InitHook = func(context.Context, carousel.Container, carousel.InitRequest) error {
		panic("renderer crashed")
	}
	c := newController(t, eng)
	mustUpdate(t, c, photos(3), carousel.DefaultParams())
	if c.State() != carousel.StateUninitialized {
		t.Errorf("state = %v, want uninitialized", c.State())
	}
	if diff := cmp.Diff([]errors.ErrorKind{errors.KindInit}, h.kinds()); diff != "" {
		t.Errorf("reported kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerLoopBelowMinimumHasNoClones(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	p.MinItemsForLoop = 4
	p.AutoDetectMode = false
	mustUpdate(t, c, photos(2), p)

	if c.Mode() != carousel.ModeCircular {
		t.Errorf("mode = %v, want circular", c.Mode())
	}
	if c.Config().Loop {
		t.Error("loop enabled with 2 items")
	}
	if l := c.Layout(); l.CloneCount != 0 || l.RawCount() != 2 {
		t.Errorf("layout = %+v, want 2 raw slides and no clones", l)
	}
}

func TestControllerNormalizesCloneIndices(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng, carousel.WithCloneOptions(carousel.CloneOptions{Minimum: 7, SafetyMargin: 2}))
	rec := record(c)
	p := carousel.DefaultParams()
	p.MinItemsForLoop = 3
	mustUpdate(t, c, photos(3), p)

	inst, _ := eng.Instance(c.Container())
	if inst.Layout.RawCount() < 9 || inst.Layout.CloneCount < 4 {
		t.Fatalf("engine layout = %+v", inst.Layout)
	}
	if err := eng.Emit(c.Container(), 8); err != nil {
		t.Fatal(err)
	}
	indices, changed, _ := rec.snapshot()
	if got := indices[len(indices)-1]; got != 2 {
		t.Errorf("raw 8 normalized to %d, want 2", got)
	}
	if got := changed[len(changed)-1].Title; got != "Photo 2" {
		t.Errorf("item = %q, want Photo 2", got)
	}
	if c.ActiveIndex() != 2 {
		t.Errorf("ActiveIndex = %d, want 2", c.ActiveIndex())
	}
}

func TestControllerSelectOnScroll(t *testing.T) {
	for _, selectOnScroll := range []bool{false, true} {
		t.Run(fmt.Sprint(selectOnScroll), func(t *testing.T) {
			eng := simengine.New()
			eng.Silent = true
			c := newController(t, eng)
			rec := record(c)
			p := carousel.DefaultParams()
			p.SelectOnScroll = selectOnScroll
			mustUpdate(t, c, photos(4), p)

			if err := eng.Swipe(c.Container(), 1); err != nil {
				t.Fatal(err)
			}
			_, changed, selected := rec.snapshot()
			if len(changed) != 1 {
				t.Fatalf("changed = %+v, want one event", changed)
			}
			wantSelected := 0
			if selectOnScroll {
				wantSelected = 1
			}
			if len(selected) != wantSelected {
				t.Errorf("selected after swipe = %d events, want %d", len(selected), wantSelected)
			}

			if err := c.Tap(5); err != nil {
				t.Fatalf("Tap: %v", err)
			}
			_, _, selected = rec.snapshot()
			if len(selected) != wantSelected+1 || selected[len(selected)-1].Title != "Photo 1" {
				t.Errorf("tap on raw 5 selected %+v, want Photo 1", selected)
			}
		})
	}
}

func TestControllerDropsStaleCallbacks(t *testing.T) {
	h := captureErrors(t)
	eng := simengine.New()
	var mu sync.Mutex
	var callbacks []func(int)
	eng.InitHook = func(_ context.Context, _ carousel.Container, req carousel.InitRequest) error {
		mu.Lock()
		callbacks = append(callbacks, req.OnIndex)
		mu.Unlock()
		return nil
	}
	c := newController(t, eng)
	rec := record(c)
	p := carousel.DefaultParams()
	mustUpdate(t, c, photos(4), p)
	p.Rotation = 10
	mustUpdate(t, c, photos(4), p)

	before, _, _ := rec.snapshot()
	mu.Lock()
	stale := callbacks[0]
	mu.Unlock()
	stale(3)
	after, _, _ := rec.snapshot()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("stale callback emitted events (-before +after):\n%s", diff)
	}

	c.Dispose()
	c.Wait()
	mu.Lock()
	current := callbacks[len(callbacks)-1]
	mu.Unlock()
	current(1)
	if final, _, _ := rec.snapshot(); len(final) != len(after) {
		t.Error("callback after Dispose emitted events")
	}
	assertStaleReports(t, h, 2)
}

func TestControllerDropsIndexOutsideCache(t *testing.T) {
	h := captureErrors(t)
	eng := simengine.New()
	release := make(chan struct{})
	var mu sync.Mutex
	var onIndex func(int)
	eng.InitHook = func(_ context.Context, _ carousel.Container, req carousel.InitRequest) error {
		mu.Lock()
		onIndex = req.OnIndex
		mu.Unlock()
		<-release
		return nil
	}
	c := newController(t, eng)
	rec := record(c)
	p := carousel.DefaultParams()
	if err := c.Update(photos(4), p); err != nil {
		t.Fatal(err)
	}
	// The item cache shrinks while the 4-item generation is still being created.
	if err := c.Update(photos(2), p); err != nil {
		t.Fatal(err)
	}
	close(release)
	c.Wait()

	before, _, _ := rec.snapshot()
	mu.Lock()
	notify := onIndex
	mu.Unlock()
	notify(3)
	if after, _, _ := rec.snapshot(); len(after) != len(before) {
		t.Errorf("index outside the item cache was relayed: %v", after)
	}
	assertStaleReports(t, h, 1)

	notify(-3)
	after, _, _ := rec.snapshot()
	if len(after) != len(before)+1 || after[len(after)-1] != 1 {
		t.Errorf("raw -3 over 4 slides: indices %v, want trailing 1", after)
	}
}

func TestControllerIgnoresRequestsWhileBusy(t *testing.T) {
	eng := simengine.New()
	release := make(chan struct{})
	eng.InitHook = func(context.Context, carousel.Container, carousel.InitRequest) error {
		<-release
		return nil
	}
	c := newController(t, eng)
	p := carousel.DefaultParams()
	if err := c.Update(photos(3), p); err != nil {
		t.Fatal(err)
	}
	if c.State() != carousel.StateInitializing {
		t.Fatalf("state = %v, want initializing", c.State())
	}

	changed := p
	changed.Rotation = 90
	if err := c.Update(photos(3), changed); err != nil {
		t.Fatal(err)
	}
	close(release)
	c.Wait()

	if got := eng.Stats().Initializes; got != 1 {
		t.Fatalf("Initializes = %d, want 1 (request in flight must not be overlapped)", got)
	}
	inst, _ := eng.Instance(c.Container())
	if inst.Config.Rotate != 50 {
		t.Errorf("rotate = %v, want 50 from the first request", inst.Config.Rotate)
	}

	// The next render re-evaluates and issues the deferred change.
	mustUpdate(t, c, photos(3), changed)
	inst, _ = eng.Instance(c.Container())
	if inst.Config.Rotate != 90 {
		t.Errorf("rotate after next render = %v, want 90", inst.Config.Rotate)
	}
	if eng.Stats().MaxLive != 1 {
		t.Errorf("MaxLive = %d", eng.Stats().MaxLive)
	}
}

func TestControllerDisposeDuringInitialize(t *testing.T) {
	eng := simengine.New()
	release := make(chan struct{})
	eng.InitHook = func(context.Context, carousel.Container, carousel.InitRequest) error {
		<-release
		return nil
	}
	c := carousel.NewController(eng)
	if err := c.Update(photos(3), carousel.DefaultParams()); err != nil {
		t.Fatal(err)
	}
	c.Dispose()
	close(release)
	c.Wait()

	if eng.Live() != 0 {
		t.Errorf("live = %d after dispose, want 0", eng.Live())
	}
	if c.State() != carousel.StateDestroyed {
		t.Errorf("state = %v, want destroyed", c.State())
	}
	if err := c.Update(photos(3), carousel.DefaultParams()); !stderrors.Is(err, errors.ErrDisposed) {
		t.Errorf("Update after dispose = %v, want ErrDisposed", err)
	}
	if err := c.Tap(0); !stderrors.Is(err, errors.ErrDisposed) {
		t.Errorf("Tap after dispose = %v, want ErrDisposed", err)
	}
}

func TestControllerEmptyDuringInitialize(t *testing.T) {
	eng := simengine.New()
	release := make(chan struct{})
	eng.InitHook = func(context.Context, carousel.Container, carousel.InitRequest) error {
		<-release
		return nil
	}
	c := newController(t, eng)
	p := carousel.DefaultParams()
	if err := c.Update(photos(3), p); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(nil, p); err != nil {
		t.Fatal(err)
	}
	close(release)
	c.Wait()
	if eng.Live() != 0 || c.State() != carousel.StateDestroyed {
		t.Errorf("live = %d state = %v, want 0 destroyed", eng.Live(), c.State())
	}
}

func TestControllerPreservesActiveIndexAcrossReinitialize(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	mustUpdate(t, c, photos(5), p)
	if err := c.SlideTo(3); err != nil {
		t.Fatal(err)
	}

	p.Depth = 20
	mustUpdate(t, c, photos(5), p)
	inst, _ := eng.Instance(c.Container())
	if inst.Config.InitialSlide != 3 {
		t.Errorf("InitialSlide = %d, want 3", inst.Config.InitialSlide)
	}
	if c.ActiveIndex() != 3 {
		t.Errorf("ActiveIndex = %d, want 3", c.ActiveIndex())
	}
}

func TestControllerNavigationWrapsThroughClones(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	mustUpdate(t, c, photos(3), carousel.DefaultParams())

	raw := c.Layout().RawCount()
	if raw != 9 {
		t.Fatalf("raw slides = %d, want 9", raw)
	}
	for i := 1; i < raw; i++ {
		if err := c.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if c.ActiveIndex() != 2 {
		t.Errorf("ActiveIndex at raw 8 = %d, want 2", c.ActiveIndex())
	}
	if err := c.Next(); err != nil {
		t.Fatal(err)
	}
	if inst, _ := eng.Instance(c.Container()); inst.Active != 0 || c.ActiveIndex() != 0 {
		t.Errorf("after wrap raw = %d logical = %d, want 0 0", inst.Active, c.ActiveIndex())
	}
	if err := c.Prev(); err != nil {
		t.Fatal(err)
	}
	if inst, _ := eng.Instance(c.Container()); inst.Active != raw-1 {
		t.Errorf("Prev from 0 raw = %d, want %d", inst.Active, raw-1)
	}
}

func TestControllerNavigationStopsWithoutLoop(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	p := carousel.DefaultParams()
	p.Loop = false
	mustUpdate(t, c, photos(3), p)

	if err := c.Prev(); err != nil {
		t.Fatal(err)
	}
	if c.ActiveIndex() != 0 {
		t.Errorf("Prev at start moved to %d", c.ActiveIndex())
	}
	if err := c.SlideTo(2); err != nil {
		t.Fatal(err)
	}
	if err := c.Next(); err != nil {
		t.Fatal(err)
	}
	if c.ActiveIndex() != 2 {
		t.Errorf("Next at end moved to %d", c.ActiveIndex())
	}
	if err := c.SlideTo(7); err == nil {
		t.Error("SlideTo out of range succeeded")
	}
}

func TestControllerNotReady(t *testing.T) {
	c := newController(t, simengine.New())
	if err := c.Tap(0); !stderrors.Is(err, errors.ErrNotReady) {
		t.Errorf("Tap before init = %v, want ErrNotReady", err)
	}
	if err := c.Next(); !stderrors.Is(err, errors.ErrNotReady) {
		t.Errorf("Next before init = %v, want ErrNotReady", err)
	}
}

type queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queue) dispatch(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *queue) flush() {
	for {
		q.mu.Lock()
		if len(q.fns) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.fns[0]
		q.fns = q.fns[1:]
		q.mu.Unlock()
		fn()
	}
}

func TestControllerDispatcherAppliesCompletions(t *testing.T) {
	q := &queue{}
	eng := simengine.New()
	c := carousel.NewController(eng, carousel.WithDispatcher(q.dispatch), carousel.WithContainer("gallery"))
	rec := record(c)

	if err := c.Update(photos(3), carousel.DefaultParams()); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	if c.State() != carousel.StateInitializing {
		t.Errorf("state before flush = %v, want initializing", c.State())
	}
	if indices, _, _ := rec.snapshot(); len(indices) != 0 {
		t.Errorf("events delivered before flush: %v", indices)
	}

	q.flush()
	if c.State() != carousel.StateReady {
		t.Errorf("state after flush = %v, want ready", c.State())
	}
	if indices, _, _ := rec.snapshot(); len(indices) != 1 {
		t.Errorf("indices after flush = %v", indices)
	}
	if _, ok := eng.Instance("gallery"); !ok {
		t.Error("WithContainer handle not used")
	}

	c.Dispose()
	c.Wait()
	q.flush()
	c.Wait()
	if eng.Live() != 0 {
		t.Errorf("live = %d after dispose", eng.Live())
	}
}

func TestControllerUnsubscribe(t *testing.T) {
	eng := simengine.New()
	c := newController(t, eng)
	var n int
	var mu sync.Mutex
	unsubscribe := c.OnIndexChanged(func(int) {
		mu.Lock()
		n++
		mu.Unlock()
	})
	mustUpdate(t, c, photos(3), carousel.DefaultParams())
	unsubscribe()
	if err := eng.Swipe(c.Container(), 1); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if n != 1 {
		t.Errorf("listener called %d times, want 1", n)
	}
}

func TestStateString(t *testing.T) {
	want := map[carousel.State]string{
		carousel.StateUninitialized:  "uninitialized",
		carousel.StateInitializing:   "initializing",
		carousel.StateReady:          "ready",
		carousel.StateReinitializing: "reinitializing",
		carousel.StateDestroyed:      "destroyed",
		carousel.State(42):           "State(42)",
	}
	for s, w := range want {
		if got := s.String(); got != w {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, w)
		}
	}
}
