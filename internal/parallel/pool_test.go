package parallel

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPoolWorkers(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 4, 4},
		{"zero", 0, runtime.GOMAXPROCS(0)},
		{"negative", -5, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.workers)
			defer p.Close()
			if p.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", p.Workers(), tt.want)
			}
		})
	}
}

func TestPoolDo(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const n = 100
	seen := make([]atomic.Int32, n)
	if err := p.Do(n, func(i int) error {
		seen[i].Add(1)
		return nil
	}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	for i := range seen {
		if got := seen[i].Load(); got != 1 {
			t.Errorf("job %d ran %d times, want 1", i, got)
		}
	}
}

func TestPoolDoLowestError(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	errLow, errHigh := errors.New("low"), errors.New("high")
	var ran atomic.Int32
	err := p.Do(10, func(i int) error {
		ran.Add(1)
		switch i {
		case 2:
			time.Sleep(5 * time.Millisecond)
			return errLow
		case 7:
			return errHigh
		}
		return nil
	})
	if !errors.Is(err, errLow) {
		t.Errorf("Do() error = %v, want %v", err, errLow)
	}
	if ran.Load() != 10 {
		t.Errorf("ran %d jobs, want all 10", ran.Load())
	}
}

func TestPoolDoAfterClose(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()

	var count int
	if err := p.Do(5, func(int) error {
		count++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5 jobs run inline", count)
	}
}

func TestPoolWorkStealing(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	// Every fourth job is slow and lands on worker 0; the others must not
	// wait for it.
	start := time.Now()
	err := p.Do(16, func(i int) error {
		if i%4 == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d > time.Second {
		t.Errorf("Do() took %v", d)
	}
}

func TestForEach(t *testing.T) {
	tests := []struct {
		name       string
		workers, n int
	}{
		{"empty", 4, 0},
		{"single job", 4, 1},
		{"sequential", 1, 20},
		{"parallel", 0, 50},
		{"more workers than jobs", 64, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sum atomic.Int64
			if err := ForEach(tt.workers, tt.n, func(i int) error {
				sum.Add(int64(i))
				return nil
			}); err != nil {
				t.Fatal(err)
			}
			if want := int64(tt.n * (tt.n - 1) / 2); sum.Load() != want {
				t.Errorf("sum = %d, want %d", sum.Load(), want)
			}
		})
	}
}

func TestForEachError(t *testing.T) {
	errBad := errors.New("bad")
	err := ForEach(2, 8, func(i int) error {
		if i == 5 {
			return errBad
		}
		return nil
	})
	if !errors.Is(err, errBad) {
		t.Errorf("ForEach() error = %v, want %v", err, errBad)
	}
}
