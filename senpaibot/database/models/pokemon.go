package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Rarity tiers. 6 and 7 trigger jackpot payouts, 8 is reserved for event
// pokemon that never appear in normal roll pools.
const (
	RarityCommon    = 1
	RarityUncommon  = 2
	RarityRare      = 3
	RaritySuperRare = 4
	RarityUltraRare = 5
	RarityShiny     = 6
	RarityLegendary = 7
	RarityEvent     = 8

	RarityMin = 1
	RarityMax = 8
)

// SpecialIDStart marks the first catalog id belonging to the virtual event
// region. Everything below it maps to a real region by dex range.
const SpecialIDStart = 10000

type Pokemon struct {
	bun.BaseModel `bun:"table:pokemons,alias:p"`

	ID       int64  `bun:"id,pk"`
	Name     string `bun:"name,notnull"`
	Rarity   int    `bun:"rarity,notnull"`
	Power    int64  `bun:"power,notnull,default:0"`
	Region   string `bun:"region,notnull"`
	Featured bool   `bun:"featured,notnull,default:false"`
	Special  bool   `bun:"special,notnull,default:false"`
	Active   bool   `bun:"active,notnull,default:true"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type regionRange struct {
	name string
	from int64
	to   int64
}

var regionRanges = []regionRange{
	{"kanto", 1, 151},
	{"johto", 152, 251},
	{"hoenn", 252, 386},
	{"sinnoh", 387, 493},
	{"unova", 494, 649},
	{"kalos", 650, 721},
	{"alola", 722, 809},
	{"galar", 810, 905},
	{"paldea", 906, 1025},
}

// RegionEvent is the virtual region for special entries.
const RegionEvent = "event"

// RegionForID derives the region from the catalog id. The mapping is fixed:
// dex ranges for real regions, everything at or above SpecialIDStart is event.
func RegionForID(id int64) string {
	if id >= SpecialIDStart {
		return RegionEvent
	}
	for _, r := range regionRanges {
		if id >= r.from && id <= r.to {
			return r.name
		}
	}
	return "unknown"
}

// Regions returns the known real region names in dex order.
func Regions() []string {
	names := make([]string, 0, len(regionRanges))
	for _, r := range regionRanges {
		names = append(names, r.name)
	}
	return names
}

// ValidRegion reports whether name is a real region or the event region.
func ValidRegion(name string) bool {
	if name == RegionEvent {
		return true
	}
	for _, r := range regionRanges {
		if r.name == name {
			return true
		}
	}
	return false
}
