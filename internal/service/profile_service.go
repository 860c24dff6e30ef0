package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

type profileStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// MonthlyStats are the counters of the current month.
type MonthlyStats struct {
	Month         string          `json:"month"`
	Contributions int             `json:"contributions"`
	Expenditure   decimal.Decimal `json:"expenditure"`
	Savings       decimal.Decimal `json:"savings"`
}

// Profile is the authenticated user's own view of their stats.
type Profile struct {
	Username              string          `json:"username"`
	AvatarID              int             `json:"userAvatarId"`
	JoinedAt              time.Time       `json:"joinedAt"`
	RankScore             int             `json:"rankScore"`
	LastRankIncrement     int             `json:"lastRankIncrement"`
	TotalContributions    int             `json:"totalContributions"`
	TotalExpenditure      decimal.Decimal `json:"totalExpenditure"`
	EstimatedTotalSavings decimal.Decimal `json:"estimatedTotalSavings"`
	MonthlyStats          MonthlyStats    `json:"monthlyStats"`
}

// ProfileService reads user profiles.
type ProfileService struct {
	users profileStore
	now   func() time.Time
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users profileStore) *ProfileService {
	return &ProfileService{users: users, now: time.Now}
}

// Profile returns the user's profile. Monthly counters written in an earlier
// month are reported as zero for the current month.
func (s *ProfileService) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	month := s.now().UTC().Format("2006-01")
	monthly := MonthlyStats{Month: month, Expenditure: decimal.Zero, Savings: decimal.Zero}
	if u.StatsMonth == month {
		monthly.Contributions = u.MonthlyContributions
		monthly.Expenditure = u.MonthlyExpenditure
		monthly.Savings = u.MonthlySavings
	}

	return &Profile{
		Username:              u.Username,
		AvatarID:              u.AvatarID,
		JoinedAt:              u.JoinedAt,
		RankScore:             u.RankScore,
		LastRankIncrement:     u.LastRankIncrement,
		TotalContributions:    u.TotalContributions,
		TotalExpenditure:      u.TotalExpenditure,
		EstimatedTotalSavings: u.EstimatedTotalSavings,
		MonthlyStats:          monthly,
	}, nil
}
