package models

import (
	"github.com/uptrace/bun"
)

// RankRequirement is one row of the ordered rank ladder. Requirement is the
// rank-exp needed to advance FROM the previous rank INTO this one; the base
// rank carries 0. The terminal rank only allows prestige.
type RankRequirement struct {
	bun.BaseModel `bun:"table:rank_requirements,alias:rr"`

	Position    int    `bun:"position,pk"`
	Name        string `bun:"name,notnull,unique"`
	Requirement int64  `bun:"requirement,notnull"`
}
