package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() || ok.IsErr() {
		t.Error("Ok result misreports state")
	}
	v, err := ok.Unwrap()
	if v != 42 || err != nil {
		t.Errorf("Unwrap = %d, %v", v, err)
	}

	boom := errors.New("boom")
	bad := Err[int](boom)
	if bad.IsOk() || !bad.IsErr() {
		t.Error("Err result misreports state")
	}
	if got := bad.UnwrapOr(7); got != 7 {
		t.Errorf("UnwrapOr = %d, want 7", got)
	}
}

func TestThen_ShortCircuits(t *testing.T) {
	parse := func(_ context.Context, s string) Result[int] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Err[int](err)
		}
		return Ok(n)
	}
	var doubled atomic.Int32
	double := func(_ context.Context, n int) Result[int] {
		doubled.Add(1)
		return Ok(n * 2)
	}

	combined := Then(parse, double)

	r := combined(context.Background(), "21")
	if v, _ := r.Unwrap(); v != 42 {
		t.Errorf("got %d, want 42", v)
	}

	r = combined(context.Background(), "nope")
	if r.IsOk() {
		t.Error("expected error to propagate")
	}
	if doubled.Load() != 1 {
		t.Error("second stage ran after first stage failed")
	}
}

func TestPipeline(t *testing.T) {
	inc := func(_ context.Context, n int) Result[int] { return Ok(n + 1) }
	fail := func(_ context.Context, n int) Result[int] { return Err[int](errors.New("stop")) }

	r := Pipeline(inc, inc, inc)(context.Background(), 0)
	if v, _ := r.Unwrap(); v != 3 {
		t.Errorf("got %d, want 3", v)
	}

	r = Pipeline(inc, fail, inc)(context.Background(), 0)
	if r.IsOk() {
		t.Error("pipeline should fail at the failing stage")
	}
}

func TestParMapResult_OrderAndBound(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	var active, peak atomic.Int32
	out := ParMapResult(items, 4, func(n int) Result[int] {
		cur := active.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		defer active.Add(-1)
		return Ok(n * n)
	})

	for i, r := range out {
		v, err := r.Unwrap()
		if err != nil || v != i*i {
			t.Fatalf("out[%d] = %d, %v", i, v, err)
		}
	}
	if peak.Load() > 4 {
		t.Errorf("concurrency peak %d exceeds worker bound", peak.Load())
	}
}

func TestCollect(t *testing.T) {
	r := Collect([]Result[int]{Ok(1), Ok(2)})
	if vs, err := r.Unwrap(); err != nil || len(vs) != 2 {
		t.Errorf("Collect = %v, %v", vs, err)
	}

	r = Collect([]Result[int]{Ok(1), Err[int](errors.New("x"))})
	if r.IsOk() {
		t.Error("Collect should fail on first error")
	}
}
