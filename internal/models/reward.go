package models

import "github.com/shopspring/decimal"

// RewardKind selects what a RewardJob does to the user's stats.
type RewardKind string

const (
	RewardKindReward  RewardKind = "reward"
	RewardKindPenalty RewardKind = "penalty"
)

// RewardJob is a deferred stats update queued after a receipt is processed.
type RewardJob struct {
	Kind          RewardKind
	UserID        string
	StoreName     string
	Contributions int
	Expenditure   decimal.Decimal
}
