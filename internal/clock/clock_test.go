package clock

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestClassify(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		hour, from, to int
		want           Phase
	}{
		{10, 6, 18, Day},
		{20, 6, 18, Night},
		{6, 6, 18, Day},
		{18, 6, 18, Night},
		{5, 6, 18, Night},
		{0, 0, 23, Day},
		{23, 0, 23, Night},
	}
	for _, tt := range tests {
		got, err := Classify(tt.hour, tt.from, tt.to)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, tt.want, qt.Commentf("Classify(%d, %d, %d)", tt.hour, tt.from, tt.to))
	}
}

func TestClassify_InvalidWindow(t *testing.T) {
	c := qt.New(t)

	windows := [][2]int{{18, 6}, {6, 6}, {6, 24}, {24, 25}, {-1, 5}}
	for _, w := range windows {
		_, err := Classify(5, w[0], w[1])
		c.Assert(errors.Is(err, ErrInvalidWindow), qt.IsTrue, qt.Commentf("window %v", w))
	}
}

func TestClassify_ExhaustiveWindows(t *testing.T) {
	for from := 0; from < 24; from++ {
		for to := from + 1; to < 24; to++ {
			for hour := 0; hour < 24; hour++ {
				got, err := Classify(hour, from, to)
				if err != nil {
					t.Fatalf("Classify(%d, %d, %d) error: %v", hour, from, to, err)
				}
				want := Night
				if hour >= from && hour < to {
					want = Day
				}
				if got != want {
					t.Fatalf("Classify(%d, %d, %d) = %v, want %v", hour, from, to, got, want)
				}
			}
		}
	}
}

func TestParsePhase(t *testing.T) {
	c := qt.New(t)

	for in, want := range map[string]Phase{"0": Day, "1": Night, " night ": Night, "DAY": Day} {
		got, err := ParsePhase(in)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
	_, err := ParsePhase("2")
	c.Assert(err, qt.IsNotNil)
	_, err = ParsePhase("dusk")
	c.Assert(err, qt.IsNotNil)
}

func TestPhaseOther(t *testing.T) {
	if Day.Other() != Night || Night.Other() != Day {
		t.Fatalf("Other() does not flip the phase")
	}
}
