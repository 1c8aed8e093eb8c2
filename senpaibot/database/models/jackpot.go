package models

import (
	"time"

	"github.com/uptrace/bun"
)

type JackpotContribution struct {
	bun.BaseModel `bun:"table:jackpot_contributions,alias:jc"`

	UserID string `bun:"user_id,pk"`
	Amount int64  `bun:"amount,notnull,default:0"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
