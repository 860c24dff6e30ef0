package service

import (
	"context"
	"fmt"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// LeaderboardSize is the number of users shown on the board.
const LeaderboardSize = 3

type leaderboardStore interface {
	TopUsers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	ScoreDetail(ctx context.Context, id string) (*models.ScoreDetail, error)
}

// Milestone is the bilingual hint towards the next rank.
type Milestone struct {
	EN string `json:"en"`
	JP string `json:"jp"`
}

// UserStats is the caller's own position on the board.
type UserStats struct {
	Rank          int       `json:"rank"`
	NextMilestone Milestone `json:"nextMilestone"`
}

// Leaderboard is the board with the caller's stats when authenticated.
type Leaderboard struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	UserStats   *UserStats                `json:"userStats,omitempty"`
}

// LeaderboardService builds the public leaderboard.
type LeaderboardService struct {
	users leaderboardStore
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(users leaderboardStore) *LeaderboardService {
	return &LeaderboardService{users: users}
}

// Leaderboard returns the top users. When userID is not empty the user's rank
// and next milestone are included.
func (s *LeaderboardService) Leaderboard(ctx context.Context, userID string) (*Leaderboard, error) {
	top, err := s.users.TopUsers(ctx, LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	if top == nil {
		top = []models.LeaderboardEntry{}
	}
	board := &Leaderboard{Leaderboard: top}

	if userID == "" {
		return board, nil
	}
	detail, err := s.users.ScoreDetail(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("score detail: %w", err)
	}
	if detail == nil {
		return board, nil
	}

	board.UserStats = &UserStats{
		Rank:          detail.Rank,
		NextMilestone: nextMilestone(top, detail.Rank, detail.Score),
	}
	return board, nil
}

func nextMilestone(top []models.LeaderboardEntry, rank, score int) Milestone {
	gap := func(target int) int {
		return max(target-score, 0)
	}

	switch {
	case len(top) == 0:
		return Milestone{
			EN: "Be the first to contribute!",
			JP: "最初の貢献者になりましょう！",
		}
	case rank == 1:
		return Milestone{
			EN: "Thank you for being our top contributor!",
			JP: "トップコントリビューターとしてのご協力ありがとうございます！",
		}
	case rank == 2:
		d := gap(top[0].Score)
		return Milestone{
			EN: fmt.Sprintf("You need %d points to reach 1st place!", d),
			JP: fmt.Sprintf("1位になるにはあと %d ポイント必要です！", d),
		}
	case rank == 3:
		if len(top) < 2 {
			return Milestone{
				EN: "Keep contributing to rise up!",
				JP: "貢献してランクを上げましょう！",
			}
		}
		d := gap(top[1].Score)
		return Milestone{
			EN: fmt.Sprintf("You need %d points to reach 2nd place!", d),
			JP: fmt.Sprintf("2位になるにはあと %d ポイント必要です！", d),
		}
	case len(top) >= LeaderboardSize:
		d := gap(top[LeaderboardSize-1].Score)
		return Milestone{
			EN: fmt.Sprintf("You need %d points to be one of our top contributors.", d),
			JP: fmt.Sprintf("トップコントリビューターになるには、あと %d ポイント必要です。", d),
		}
	default:
		d := gap(top[len(top)-1].Score)
		return Milestone{
			EN: fmt.Sprintf("You need %d points to join the leaderboard.", d),
			JP: fmt.Sprintf("リーダーボードに参加するには、あと %d ポイント必要です。", d),
		}
	}
}
