package random

import "testing"

func TestNewSeedReturnsDistinctValues(t *testing.T) {
	first, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	second, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct seeds, got %d twice", first)
	}
}

func TestResolveSeedKeepsExplicitSeed(t *testing.T) {
	seed, err := ResolveSeed(42)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	if seed != 42 {
		t.Fatalf("seed = %d, want 42", seed)
	}
}

func TestNewIsDeterministic(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 20; i++ {
		if x, y := a.Intn(3), b.Intn(3); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}

func TestSequenceReplaysDraws(t *testing.T) {
	seq := NewSequence(0, 4, -1)

	tcs := []struct {
		n    int
		want int
	}{
		{n: 3, want: 0},
		{n: 3, want: 1},
		{n: 3, want: 2},
		{n: 7, want: 0},
	}
	for i, tc := range tcs {
		if got := seq.Intn(tc.n); got != tc.want {
			t.Fatalf("draw %d = %d, want %d", i, got, tc.want)
		}
	}
	if seq.Drawn() != 4 {
		t.Fatalf("drawn = %d, want 4", seq.Drawn())
	}
}

func TestEmptySequenceYieldsZero(t *testing.T) {
	seq := NewSequence()
	if got := seq.Intn(3); got != 0 {
		t.Fatalf("draw = %d, want 0", got)
	}
}
