// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package bootstrap

import (
	"errors"
	"testing"

	"github.com/northbound/seekkb/internal/eventbus"
	"github.com/northbound/seekkb/internal/seekkberr"
)

func TestHolder_GetBeforeRunReturnsInitializing(t *testing.T) {
	h := NewHolder(eventbus.New())
	_, err := h.Get()
	if !errors.Is(err, seekkberr.ErrInitializing) {
		t.Errorf("Get() error = %v, want ErrInitializing", err)
	}
}

func TestHolder_GetAfterStoreReturnsState(t *testing.T) {
	h := NewHolder(eventbus.New())
	want := &State{}
	h.Install(want)

	got, err := h.Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != want {
		t.Error("Get() did not return the stored state")
	}
}

func TestRun_PublishesProgressForEveryStep(t *testing.T) {
	bus := eventbus.New()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	h := NewHolder(bus)
	// Config.Load with an empty temporary data dir and a nonexistent config file
	// fails validation (missing api_key), which is expected here: this
	// test only checks that step 1 and the start of step 2 publish
	// events before the failure propagates.
	_ = Run(t.Context(), Options{ConfigPath: "/nonexistent/config.json", DataDir: t.TempDir()}, h)

	var steps []int
	draining := true
	for draining {
		select {
		case e := <-ch:
			steps = append(steps, e.Step)
		default:
			draining = false
		}
	}

	if len(steps) < 2 {
		t.Fatalf("expected at least 2 progress events before failure, got %d", len(steps))
	}
	if steps[0] != 1 {
		t.Errorf("first event step = %d, want 1", steps[0])
	}
}
