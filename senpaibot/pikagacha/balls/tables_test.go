package balls

import (
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

func TestValidateTables(t *testing.T) {
	if err := ValidateTables(); err != nil {
		t.Fatalf("ValidateTables() = %v", err)
	}
}

func TestTierTable_drawRarity(t *testing.T) {
	poke, _ := TableFor(models.BallPoke)
	master, _ := TableFor(models.BallMaster)

	tests := []struct {
		name  string
		table TierTable
		roll  int
		want  int
	}{
		{name: "poke lowest roll", table: poke, roll: 0, want: 1},
		{name: "poke top of common band", table: poke, roll: 59, want: 1},
		{name: "poke first roll past common", table: poke, roll: 60, want: 2},
		{name: "poke highest roll", table: poke, roll: 99, want: 5},
		{name: "master lowest roll", table: master, roll: 0, want: 3},
		{name: "master shiny band", table: master, roll: 90, want: 6},
		{name: "master legendary band", table: master, roll: 95, want: 7},
		{name: "master highest roll", table: master, roll: 99, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.table.drawRarity(tt.roll); got != tt.want {
				t.Errorf("drawRarity(%d) = %d, want %d", tt.roll, got, tt.want)
			}
		})
	}
}

func TestTierTable_drawRarityExhaustive(t *testing.T) {
	// Every roll in [0, 100) must land in some band of every tier.
	for tier := models.BallTierMin; tier <= models.BallTierMax; tier++ {
		table, ok := TableFor(tier)
		if !ok {
			t.Fatalf("TableFor(%d) missing", tier)
		}
		counts := map[int]int{}
		for roll := 0; roll < 100; roll++ {
			counts[table.drawRarity(roll)]++
		}
		for _, rw := range table.Rarities {
			if counts[rw.Rarity] != rw.Weight {
				t.Errorf("tier %d rarity %d hit %d rolls, want %d", tier, rw.Rarity, counts[rw.Rarity], rw.Weight)
			}
		}
	}
}

func TestTierTable_drawPoints(t *testing.T) {
	ultra, _ := TableFor(models.BallUltra)

	if got := ultra.drawPoints(0); got != ultra.PointsMin {
		t.Errorf("drawPoints(0) = %d, want %d", got, ultra.PointsMin)
	}
	if got := ultra.drawPoints(ultra.PointsMax - ultra.PointsMin); got != ultra.PointsMax {
		t.Errorf("drawPoints(max) = %d, want %d", got, ultra.PointsMax)
	}
}
