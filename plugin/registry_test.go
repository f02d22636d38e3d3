package plugin

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakePlugin struct {
	name string

	admitted int32
	denied   int32
	warnings int32
	failErr  error
}

func (f *fakePlugin) Name() string { return f.name }

func (f *fakePlugin) OnConsumeAdmitted(_ context.Context, _ interface{}) error {
	atomic.AddInt32(&f.admitted, 1)
	return f.failErr
}

func (f *fakePlugin) OnConsumeDenied(_ context.Context, _ interface{}) error {
	atomic.AddInt32(&f.denied, 1)
	return f.failErr
}

func (f *fakePlugin) OnWarningRaised(_ context.Context, _ string, _ interface{}) error {
	atomic.AddInt32(&f.warnings, 1)
	return f.failErr
}

type namedOnly struct{ name string }

func (n *namedOnly) Name() string { return n.name }

func TestRegisterAndDispatch(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	fp := &fakePlugin{name: "fake"}
	if err := r.Register(fp); err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 {
		t.Fatalf("Count: got %d, want 1", r.Count())
	}

	r.EmitConsumeAdmitted(ctx, nil)
	r.EmitConsumeAdmitted(ctx, nil)
	r.EmitConsumeDenied(ctx, nil)
	r.EmitWarningRaised(ctx, "low_credit", nil)

	if got := atomic.LoadInt32(&fp.admitted); got != 2 {
		t.Errorf("admitted emissions: got %d, want 2", got)
	}
	if got := atomic.LoadInt32(&fp.denied); got != 1 {
		t.Errorf("denied emissions: got %d, want 1", got)
	}
	if got := atomic.LoadInt32(&fp.warnings); got != 1 {
		t.Errorf("warning emissions: got %d, want 1", got)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&namedOnly{name: "dup"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&namedOnly{name: "dup"}); err == nil {
		t.Error("expected error on duplicate registration")
	}
}

func TestHookFailureIsSwallowed(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	fp := &fakePlugin{name: "failing", failErr: errors.New("boom")}
	if err := r.Register(fp); err != nil {
		t.Fatal(err)
	}

	// Emission must not panic or propagate the hook error.
	r.EmitConsumeAdmitted(ctx, nil)
	if got := atomic.LoadInt32(&fp.admitted); got != 1 {
		t.Errorf("failing hook should still have been called once, got %d", got)
	}
}

func TestUninterestedPluginSkipsDispatch(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	if err := r.Register(&namedOnly{name: "bare"}); err != nil {
		t.Fatal(err)
	}

	// A plugin without consumption hooks must not break emission.
	r.EmitConsumeAdmitted(ctx, nil)
	r.EmitSessionReset(ctx)
	r.EmitPersistFailed(ctx, errors.New("disk full"))
}

type slowPlugin struct {
	release chan struct{}
}

func (s *slowPlugin) Name() string { return "slow" }

func (s *slowPlugin) OnSessionReset(_ context.Context) error {
	<-s.release
	return nil
}

func TestCancelledContextUnblocksDispatch(t *testing.T) {
	r := NewRegistry()
	sp := &slowPlugin{release: make(chan struct{})}
	if err := r.Register(sp); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		r.EmitSessionReset(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not honor cancelled context")
	}
	close(sp.release)
}

func TestGetAndList(t *testing.T) {
	r := NewRegistry()

	a := &namedOnly{name: "a"}
	b := &namedOnly{name: "b"}
	if err := r.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(b); err != nil {
		t.Fatal(err)
	}

	if got := r.Get("a"); got != a {
		t.Error("Get(a) should return the registered plugin")
	}
	if got := r.Get("missing"); got != nil {
		t.Error("Get(missing) should return nil")
	}
	if got := len(r.List()); got != 2 {
		t.Errorf("List: got %d plugins, want 2", got)
	}
}
