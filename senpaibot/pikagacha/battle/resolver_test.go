package battle

import (
	"math"
	"testing"
)

func TestFinalPower(t *testing.T) {
	type args struct {
		basePower int64
		copies    int64
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{name: "single copy gets no bonus", args: args{basePower: 100, copies: 1}, want: 100},
		{name: "five copies add four bonuses", args: args{basePower: 80, copies: 5}, want: 100},
		{name: "two copies add one bonus", args: args{basePower: 50, copies: 2}, want: 55},
		{name: "zero copies clamp to base", args: args{basePower: 70, copies: 0}, want: 70},
		{name: "zero power with duplicates", args: args{basePower: 0, copies: 3}, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FinalPower(tt.args.basePower, tt.args.copies); got != tt.want {
				t.Errorf("FinalPower(%d, %d) = %d, want %d", tt.args.basePower, tt.args.copies, got, tt.want)
			}
		})
	}
}

func TestFinalPowerTieScenario(t *testing.T) {
	// Power 100 with no duplicates against power 80 with five copies is a tie.
	a := FinalPower(100, 1)
	b := FinalPower(80, 5)
	if a != b {
		t.Errorf("expected tie, got %d vs %d", a, b)
	}
}

func TestPreviewChanceSplit(t *testing.T) {
	a := FinalPower(100, 1)
	b := FinalPower(50, 1)
	total := float64(a + b)

	chanceA := float64(a) / total
	chanceB := float64(b) / total

	if math.Abs(chanceA+chanceB-1.0) > 1e-9 {
		t.Errorf("chances sum to %f, want 1", chanceA+chanceB)
	}
	if chanceA <= chanceB {
		t.Errorf("stronger side has chance %f, weaker %f", chanceA, chanceB)
	}
}
