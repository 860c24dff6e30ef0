package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
)

// UserRepository handles data access for app users and their stats.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user, or sql.ErrNoRows when the id is unknown.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT * FROM users WHERE id = $1`
	var u models.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user with id exists.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
	return ok, err
}

// UpdateStats adds delta to the lifetime and monthly counters of a user.
// Monthly counters restart when month differs from the stored stats month.
// The rank increment also replaces lastRankIncrement.
func (r *UserRepository) UpdateStats(ctx context.Context, id, month string, delta models.StatsDelta) (bool, error) {
	const q = `
        UPDATE users SET
            stats_month = $2,
            rank_score = rank_score + $3,
            last_rank_increment = $3,
            total_contributions = total_contributions + $4,
            monthly_contributions = CASE WHEN stats_month = $2 THEN monthly_contributions ELSE 0 END + $4,
            total_expenditure = total_expenditure + $5,
            monthly_expenditure = CASE WHEN stats_month = $2 THEN monthly_expenditure ELSE 0 END + $5,
            estimated_total_savings = estimated_total_savings + $6,
            monthly_savings = CASE WHEN stats_month = $2 THEN monthly_savings ELSE 0 END + $6,
            updated_at = NOW()
        WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, month,
		delta.RankIncrement, delta.Contributions, delta.Expenditure, delta.Savings)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Penalize removes points from a user's rank score without going below zero.
func (r *UserRepository) Penalize(ctx context.Context, id string, points int) (bool, error) {
	const q = `
        UPDATE users SET
            last_rank_increment = GREATEST(rank_score - $2, 0) - rank_score,
            rank_score = GREATEST(rank_score - $2, 0),
            updated_at = NOW()
        WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, points)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// TopUsers returns the limit highest-ranked users. Ties go to the earlier member.
func (r *UserRepository) TopUsers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	const q = `
        SELECT username, avatar_id, rank_score, total_contributions
        FROM users
        ORDER BY rank_score DESC, joined_at ASC
        LIMIT $1`

	entries := []models.LeaderboardEntry{}
	if err := r.db.SelectContext(ctx, &entries, q, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

// ScoreDetail returns the rank and score of a user, or nil when the user is unknown.
// Rank is one more than the number of users with a strictly higher score.
func (r *UserRepository) ScoreDetail(ctx context.Context, id string) (*models.ScoreDetail, error) {
	const q = `
        SELECT u.rank_score,
               (SELECT COUNT(1) FROM users o WHERE o.rank_score > u.rank_score) + 1 AS rank
        FROM users u
        WHERE u.id = $1`

	var d models.ScoreDetail
	if err := r.db.GetContext(ctx, &d, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
