package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/samples/steptimer"
)

func fixedTimer() *steptimer.Timer {
	now := time.Unix(0, 0)
	return steptimer.New(steptimer.WithClock(func() time.Time {
		now = now.Add(16 * time.Millisecond)
		return now
	}))
}

func TestTickRendersNMinusOne(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 100} {
		updates, renders := 0, 0
		d := NewDriver(fixedTimer(),
			func(*steptimer.Timer) error { updates++; return nil },
			func() error { renders++; return nil },
		)
		for i := 0; i < n; i++ {
			if err := d.Tick(); err != nil {
				t.Fatalf("Tick() = %v", err)
			}
		}
		if updates != n {
			t.Errorf("N=%d: updates = %d, want %d", n, updates, n)
		}
		if renders != n-1 {
			t.Errorf("N=%d: renders = %d, want %d", n, renders, n-1)
		}
		if d.Renders() != uint64(n-1) {
			t.Errorf("N=%d: Renders() = %d, want %d", n, d.Renders(), n-1)
		}
	}
}

func TestTickOrder(t *testing.T) {
	var order []string
	d := NewDriver(fixedTimer(),
		func(*steptimer.Timer) error { order = append(order, "update"); return nil },
		func() error { order = append(order, "render"); return nil },
	)
	for i := 0; i < 3; i++ {
		_ = d.Tick()
	}
	want := []string{"update", "update", "render", "update", "render"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestTickUpdateErrorSkipsRender(t *testing.T) {
	boom := errors.New("boom")
	renders := 0
	calls := 0
	d := NewDriver(fixedTimer(),
		func(*steptimer.Timer) error {
			calls++
			if calls == 2 {
				return boom
			}
			return nil
		},
		func() error { renders++; return nil },
	)
	_ = d.Tick()
	if err := d.Tick(); !errors.Is(err, boom) {
		t.Fatalf("Tick() = %v, want %v", err, boom)
	}
	if renders != 0 {
		t.Errorf("renders = %d after failed update, want 0", renders)
	}
}

func TestTickRenderError(t *testing.T) {
	boom := errors.New("present failed")
	d := NewDriver(fixedTimer(), nil, func() error { return boom })
	if err := d.Tick(); err != nil {
		t.Fatalf("first Tick() = %v, want nil (no render)", err)
	}
	if err := d.Tick(); !errors.Is(err, boom) {
		t.Fatalf("second Tick() = %v, want %v", err, boom)
	}
	if d.Renders() != 0 {
		t.Errorf("Renders() = %d, want 0", d.Renders())
	}
}
