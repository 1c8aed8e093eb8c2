package progression

import (
	"errors"
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

func testLadder() []models.RankRequirement {
	return []models.RankRequirement{
		{Position: 0, Name: "rookie", Requirement: 0},
		{Position: 1, Name: "trainer", Requirement: 100},
		{Position: 2, Name: "ace_trainer", Requirement: 250},
		{Position: 3, Name: "gym_leader", Requirement: 500},
		{Position: 4, Name: "elite_four", Requirement: 1000},
		{Position: 5, Name: "champion", Requirement: 2000},
		{Position: 6, Name: "pokemon_master", Requirement: 4000},
	}
}

func Test_nextRank(t *testing.T) {
	ladder := testLadder()

	tests := []struct {
		name     string
		current  string
		wantName string
		wantOK   bool
		wantErr  bool
	}{
		{name: "base rank advances to trainer", current: "rookie", wantName: "trainer", wantOK: true},
		{name: "mid ladder", current: "gym_leader", wantName: "elite_four", wantOK: true},
		{name: "terminal rank has no next", current: "pokemon_master", wantOK: false},
		{name: "unknown rank errors", current: "gym_janitor", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok, err := nextRank(ladder, tt.current)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownRank) {
					t.Fatalf("nextRank() error = %v, want ErrUnknownRank", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("nextRank() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("nextRank() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && next.Name != tt.wantName {
				t.Errorf("nextRank() = %q, want %q", next.Name, tt.wantName)
			}
		})
	}
}

func Test_nextRankRequirementsAreMonotonic(t *testing.T) {
	ladder := testLadder()
	for i := 2; i < len(ladder); i++ {
		if ladder[i].Requirement <= ladder[i-1].Requirement {
			t.Errorf("rank %q requirement %d not above %q's %d",
				ladder[i].Name, ladder[i].Requirement, ladder[i-1].Name, ladder[i-1].Requirement)
		}
	}
}

func Test_validateLadder(t *testing.T) {
	tests := []struct {
		name    string
		ladder  []models.RankRequirement
		wantErr bool
	}{
		{name: "seeded ladder is valid", ladder: testLadder()},
		{
			name:    "single rank rejected",
			ladder:  []models.RankRequirement{{Position: 0, Name: "rookie", Requirement: 0}},
			wantErr: true,
		},
		{
			name: "plateau rejected",
			ladder: []models.RankRequirement{
				{Position: 0, Name: "rookie", Requirement: 0},
				{Position: 1, Name: "trainer", Requirement: 100},
				{Position: 2, Name: "ace_trainer", Requirement: 100},
			},
			wantErr: true,
		},
		{
			name: "descending requirement rejected",
			ladder: []models.RankRequirement{
				{Position: 0, Name: "rookie", Requirement: 0},
				{Position: 1, Name: "trainer", Requirement: 100},
				{Position: 2, Name: "ace_trainer", Requirement: 50},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLadder(tt.ladder)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateLadder() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_promotionBallTier(t *testing.T) {
	tests := []struct {
		position int
		want     int
	}{
		{position: 1, want: models.BallPoke},
		{position: 2, want: models.BallGreat},
		{position: 3, want: models.BallGreat},
		{position: 4, want: models.BallUltra},
		{position: 5, want: models.BallUltra},
		{position: 6, want: models.BallMaster},
		{position: 9, want: models.BallMaster},
	}
	for _, tt := range tests {
		if got := promotionBallTier(tt.position); got != tt.want {
			t.Errorf("promotionBallTier(%d) = %d, want %d", tt.position, got, tt.want)
		}
	}
}

func TestValidTeam(t *testing.T) {
	for _, team := range Teams {
		if !ValidTeam(team) {
			t.Errorf("ValidTeam(%q) = false", team)
		}
	}
	if ValidTeam("rocket") {
		t.Error("ValidTeam(\"rocket\") = true")
	}
	if ValidTeam("") {
		t.Error("ValidTeam(\"\") = true")
	}
}
