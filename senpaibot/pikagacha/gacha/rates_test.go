package gacha

import (
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

func TestResolveOutcome(t *testing.T) {
	type args struct {
		first  int
		second int
		pThree int
		pFour  int
		pFive  int
	}
	tests := []struct {
		name string
		args args
		want Outcome
	}{
		{
			name: "first draw inside legendary band",
			args: args{first: 0, second: 999, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: models.RarityLegendary},
		},
		{
			name: "first draw at top of legendary band",
			args: args{first: 99, second: 0, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: models.RarityLegendary},
		},
		{
			name: "first draw inside shiny band",
			args: args{first: 100, second: 0, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: models.RarityShiny},
		},
		{
			name: "first draw at shiny upper boundary falls through to pity",
			args: args{first: 400, second: 0, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: 3},
		},
		{
			name: "second draw below tier three threshold",
			args: args{first: 50000, second: 699, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: 3},
		},
		{
			name: "second draw at tier three threshold resolves four",
			args: args{first: 50000, second: 700, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: 4},
		},
		{
			name: "second draw below cumulative four threshold",
			args: args{first: 50000, second: 949, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: 4},
		},
		{
			name: "second draw inside five band",
			args: args{first: 50000, second: 950, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: 5},
		},
		{
			name: "second draw above all thresholds is a focus pull",
			args: args{first: 50000, second: 990, pThree: 700, pFour: 250, pFive: 40},
			want: Outcome{Rarity: 5, Focus: true},
		},
		{
			name: "shifted pity widens the high bands",
			args: args{first: 50000, second: 650, pThree: 600, pFour: 250, pFive: 90},
			want: Outcome{Rarity: 4},
		},
		{
			name: "tier three floored at zero routes lowest draw to four",
			args: args{first: 50000, second: 0, pThree: 0, pFour: 250, pFive: 40},
			want: Outcome{Rarity: 4},
		},
		{
			name: "all low thresholds at zero make every draw a five",
			args: args{first: 50000, second: 5, pThree: 0, pFour: 0, pFive: 500},
			want: Outcome{Rarity: 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOutcome(tt.args.first, tt.args.second, tt.args.pThree, tt.args.pFour, tt.args.pFive)
			if got != tt.want {
				t.Errorf("ResolveOutcome() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPityShiftPreservesDrawRange(t *testing.T) {
	trainer := &models.Trainer{}
	trainer.ResetPity()

	for i := 0; i < 500; i++ {
		sum := trainer.PityThree + trainer.PityFour + trainer.PityFive + trainer.PityFocus
		if sum < models.PityDrawRange {
			t.Fatalf("pity sum shrank to %d below draw range %d after %d shifts", sum, models.PityDrawRange, i)
		}
		if trainer.PityThree < 0 || trainer.PityFour < 0 {
			t.Fatalf("low pity counter went negative after %d shifts", i)
		}
		trainer.ShiftPity()
	}
}

func TestPityResetRestoresBaselines(t *testing.T) {
	trainer := &models.Trainer{}
	trainer.ResetPity()
	for i := 0; i < 37; i++ {
		trainer.ShiftPity()
	}

	trainer.ResetPity()

	if trainer.PityThree != models.PityBaseThree ||
		trainer.PityFour != models.PityBaseFour ||
		trainer.PityFive != models.PityBaseFive ||
		trainer.PityFocus != models.PityBaseFocus {
		t.Errorf("ResetPity() left counters at (%d, %d, %d, %d)",
			trainer.PityThree, trainer.PityFour, trainer.PityFive, trainer.PityFocus)
	}
}
