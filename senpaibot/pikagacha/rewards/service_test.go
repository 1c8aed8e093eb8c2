package rewards

import (
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

func Test_splitIntervals(t *testing.T) {
	type args struct {
		carry    int64
		session  int64
		interval int64
	}
	tests := []struct {
		name          string
		args          args
		wantIntervals int64
		wantCarry     int64
	}{
		{name: "short session carries fully", args: args{carry: 0, session: 400, interval: 600}, wantIntervals: 0, wantCarry: 400},
		{name: "exact interval", args: args{carry: 0, session: 600, interval: 600}, wantIntervals: 1, wantCarry: 0},
		{name: "carry tips the session over", args: args{carry: 500, session: 150, interval: 600}, wantIntervals: 1, wantCarry: 50},
		{name: "long session batches multiple intervals", args: args{carry: 0, session: 1900, interval: 600}, wantIntervals: 3, wantCarry: 100},
		{name: "zero interval credits nothing", args: args{carry: 100, session: 500, interval: 0}, wantIntervals: 0, wantCarry: 100},
		{name: "negative session clamps", args: args{carry: 0, session: -50, interval: 600}, wantIntervals: 0, wantCarry: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intervals, carry := splitIntervals(tt.args.carry, tt.args.session, tt.args.interval)
			if intervals != tt.wantIntervals || carry != tt.wantCarry {
				t.Errorf("splitIntervals() = (%d, %d), want (%d, %d)",
					intervals, carry, tt.wantIntervals, tt.wantCarry)
			}
		})
	}
}

func Test_quizPoints(t *testing.T) {
	tests := []struct {
		name   string
		streak int
		want   int64
	}{
		{name: "no streak pays base", streak: 0, want: 10},
		{name: "streak scales linearly", streak: 5, want: 20},
		{name: "just under the cap", streak: 19, want: 48},
		{name: "at the cap", streak: 20, want: 50},
		{name: "beyond the cap stays capped", streak: 100, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quizPoints(tt.streak); got != tt.want {
				t.Errorf("quizPoints(%d) = %d, want %d", tt.streak, got, tt.want)
			}
		})
	}
}

func Test_milestoneBall(t *testing.T) {
	tests := []struct {
		streak   int
		wantTier int
		wantOK   bool
	}{
		{streak: 5, wantTier: models.BallPoke, wantOK: true},
		{streak: 10, wantTier: models.BallGreat, wantOK: true},
		{streak: 25, wantTier: models.BallUltra, wantOK: true},
		{streak: 50, wantTier: models.BallMaster, wantOK: true},
		{streak: 4, wantOK: false},
		{streak: 11, wantOK: false},
		{streak: 0, wantOK: false},
	}
	for _, tt := range tests {
		tier, ok := milestoneBall(tt.streak)
		if ok != tt.wantOK {
			t.Errorf("milestoneBall(%d) ok = %v, want %v", tt.streak, ok, tt.wantOK)
			continue
		}
		if ok && tier != tt.wantTier {
			t.Errorf("milestoneBall(%d) = %d, want %d", tt.streak, tier, tt.wantTier)
		}
	}
}
