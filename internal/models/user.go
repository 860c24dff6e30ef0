package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User holds the gamification stats of an app user. Monthly counters belong
// to StatsMonth ("YYYY-MM") and restart when a new month is first written.
type User struct {
	ID                    string          `db:"id" json:"id"`
	Username              string          `db:"username" json:"username"`
	AvatarID              int             `db:"avatar_id" json:"avatarId"`
	RankScore             int             `db:"rank_score" json:"rankScore"`
	LastRankIncrement     int             `db:"last_rank_increment" json:"lastRankIncrement"`
	TotalContributions    int             `db:"total_contributions" json:"totalContributions"`
	TotalExpenditure      decimal.Decimal `db:"total_expenditure" json:"totalExpenditure"`
	EstimatedTotalSavings decimal.Decimal `db:"estimated_total_savings" json:"estimatedTotalSavings"`
	StatsMonth            string          `db:"stats_month" json:"statsMonth"`
	MonthlyContributions  int             `db:"monthly_contributions" json:"monthlyContributions"`
	MonthlyExpenditure    decimal.Decimal `db:"monthly_expenditure" json:"monthlyExpenditure"`
	MonthlySavings        decimal.Decimal `db:"monthly_savings" json:"monthlySavings"`
	JoinedAt              time.Time       `db:"joined_at" json:"joinedAt"`
	UpdatedAt             time.Time       `db:"updated_at" json:"-"`
}

// StatsDelta is added to a user's lifetime and monthly stats.
type StatsDelta struct {
	RankIncrement int
	Contributions int
	Expenditure   decimal.Decimal
	Savings       decimal.Decimal
}

// LeaderboardEntry is the public projection of a top user.
type LeaderboardEntry struct {
	Username      string `db:"username" json:"username"`
	AvatarID      int    `db:"avatar_id" json:"avatarId"`
	Score         int    `db:"rank_score" json:"score"`
	Contributions int    `db:"total_contributions" json:"contributions"`
}

// ScoreDetail is a user's position on the leaderboard. Rank 1 is the highest score.
type ScoreDetail struct {
	Rank  int `db:"rank" json:"rank"`
	Score int `db:"rank_score" json:"score"`
}
