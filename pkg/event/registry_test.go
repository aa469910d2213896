package event

import (
	"testing"

	"github.com/matzehuels/stackplot/pkg/errors"
)

func TestRegistryOrder(t *testing.T) {
	var r Registry[int]
	var got []string
	r.Subscribe(func(int) { got = append(got, "a") })
	r.Subscribe(func(int) { got = append(got, "b") })
	r.Subscribe(func(int) { got = append(got, "c") })

	r.Notify(1)

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Notify() called %d listeners, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("listener[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistryUnsubscribe(t *testing.T) {
	var r Registry[string]
	calls := 0
	h := r.Subscribe(func(string) { calls++ })

	if err := r.Unsubscribe(h); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	r.Notify("x")
	if calls != 0 {
		t.Errorf("calls = %d after unsubscribe, want 0", calls)
	}

	err := r.Unsubscribe(h)
	if !errors.Is(err, errors.ErrCodeNotRegistered) {
		t.Errorf("second Unsubscribe() = %v, want %s", err, errors.ErrCodeNotRegistered)
	}
	if err := r.Unsubscribe(Handle(99)); err == nil {
		t.Error("Unsubscribe(unknown) = nil, want error")
	}
}

func TestRegistryReentrantNotify(t *testing.T) {
	var r Registry[int]
	var seen []int
	r.Subscribe(func(v int) {
		seen = append(seen, v)
		if v < 3 {
			r.Notify(v + 1)
		}
	})

	r.Notify(1)

	want := []int{1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestRegistryUnboundedCycleTerminates(t *testing.T) {
	var r Registry[int]
	calls := 0
	r.Subscribe(func(v int) {
		calls++
		r.Notify(v)
	})

	r.Notify(0)

	if calls != maxReplays+1 {
		t.Errorf("calls = %d, want %d", calls, maxReplays+1)
	}
}

func TestRegistryUnsubscribeDuringDispatch(t *testing.T) {
	var r Registry[int]
	var second Handle
	calls := 0
	r.Subscribe(func(int) {
		_ = r.Unsubscribe(second)
	})
	second = r.Subscribe(func(int) { calls++ })

	r.Notify(0)
	if calls != 0 {
		t.Errorf("removed listener called %d times, want 0", calls)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
