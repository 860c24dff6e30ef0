package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

// PointsPerContribution is the rank score earned per updated product.
const PointsPerContribution = 5

type statsUserStore interface {
	UpdateStats(ctx context.Context, id, month string, delta models.StatsDelta) (bool, error)
	Penalize(ctx context.Context, id string, points int) (bool, error)
}

type storeRegistry interface {
	ListNames(ctx context.Context) ([]string, error)
	AddIfNotExists(ctx context.Context, name string) error
}

// StatsService applies rewards and penalties to user stats.
type StatsService struct {
	users         statsUserStore
	stores        storeRegistry
	penaltyPoints int
	now           func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(users statsUserStore, stores storeRegistry, penaltyPoints int) *StatsService {
	return &StatsService{
		users:         users,
		stores:        stores,
		penaltyPoints: penaltyPoints,
		now:           time.Now,
	}
}

// Apply runs a queued job.
func (s *StatsService) Apply(ctx context.Context, job models.RewardJob) error {
	switch job.Kind {
	case models.RewardKindReward:
		return s.Reward(ctx, job.UserID, job.StoreName, job.Contributions, job.Expenditure)
	case models.RewardKindPenalty:
		return s.Penalize(ctx, job.UserID)
	default:
		return fmt.Errorf("unknown reward job kind %q", job.Kind)
	}
}

// Reward registers storeName and credits the user for contributions updated
// products and the receipt total. Savings are not earned by contributing.
func (s *StatsService) Reward(ctx context.Context, userID, storeName string, contributions int, expenditure decimal.Decimal) error {
	if storeName != "" {
		if err := s.stores.AddIfNotExists(ctx, storeName); err != nil {
			log.Warn().Err(err).Str("store", storeName).Msg("Failed to register store")
		}
	}

	delta := models.StatsDelta{
		RankIncrement: contributions * PointsPerContribution,
		Contributions: contributions,
		Expenditure:   expenditure,
		Savings:       decimal.Zero,
	}
	month := s.now().UTC().Format("2006-01")

	ok, err := s.users.UpdateStats(ctx, userID, month, delta)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	if !ok {
		return utils.ErrUserNotFound
	}
	return nil
}

// Penalize deducts the configured points for a bad upload.
func (s *StatsService) Penalize(ctx context.Context, userID string) error {
	if s.penaltyPoints <= 0 {
		return nil
	}
	ok, err := s.users.Penalize(ctx, userID, s.penaltyPoints)
	if err != nil {
		return fmt.Errorf("penalize: %w", err)
	}
	if !ok {
		return utils.ErrUserNotFound
	}
	return nil
}
