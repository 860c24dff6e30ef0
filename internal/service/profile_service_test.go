package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wweverma1/pocket-ninja-backend/internal/models"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

type fakeProfiles struct {
	user *models.User
	err  error
}

func (f fakeProfiles) GetByID(context.Context, string) (*models.User, error) {
	return f.user, f.err
}

func newProfileService(users profileStore) *ProfileService {
	svc := NewProfileService(users)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestProfile_CurrentMonth(t *testing.T) {
	svc := newProfileService(fakeProfiles{user: &models.User{
		Username:             "ninja",
		AvatarID:             3,
		RankScore:            40,
		TotalContributions:   8,
		StatsMonth:           "2025-06",
		MonthlyContributions: 2,
		MonthlyExpenditure:   decimal.NewFromInt(900),
		MonthlySavings:       decimal.Zero,
	}})

	p, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ninja", p.Username)
	assert.Equal(t, 40, p.RankScore)
	assert.Equal(t, "2025-06", p.MonthlyStats.Month)
	assert.Equal(t, 2, p.MonthlyStats.Contributions)
	assert.True(t, decimal.NewFromInt(900).Equal(p.MonthlyStats.Expenditure))
}

func TestProfile_StaleMonthReadsAsZero(t *testing.T) {
	svc := newProfileService(fakeProfiles{user: &models.User{
		StatsMonth:           "2025-05",
		MonthlyContributions: 7,
		MonthlyExpenditure:   decimal.NewFromInt(5000),
	}})

	p, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06", p.MonthlyStats.Month)
	assert.Zero(t, p.MonthlyStats.Contributions)
	assert.True(t, p.MonthlyStats.Expenditure.IsZero())
}

func TestProfile_Errors(t *testing.T) {
	_, err := newProfileService(fakeProfiles{err: sql.ErrNoRows}).Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, utils.ErrUserNotFound)

	_, err = newProfileService(fakeProfiles{err: errors.New("db down")}).Profile(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, utils.ErrUserNotFound)
}
