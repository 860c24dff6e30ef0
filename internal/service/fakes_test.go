package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wweverma1/pocket-ninja-backend/internal/catalog"
	"github.com/wweverma1/pocket-ninja-backend/internal/models"
	"github.com/wweverma1/pocket-ninja-backend/pkg/gemini"
)

type fakeReceipts struct {
	mu        sync.Mutex
	created   int
	updates   map[string]models.ReceiptUpdate
	createErr error
	listed    []time.Time
	list      []models.Receipt
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{updates: map[string]models.ReceiptUpdate{}}
}

func (f *fakeReceipts) Create(_ context.Context, userID string) (*models.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &models.Receipt{ID: "r1", UserID: userID, Status: models.ReceiptStatusPending}, nil
}

func (f *fakeReceipts) UpdateStatus(_ context.Context, id string, upd models.ReceiptUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = upd
	return nil
}

func (f *fakeReceipts) ListByUser(_ context.Context, _ string, from, to time.Time) ([]models.Receipt, error) {
	f.listed = append(f.listed, from, to)
	return f.list, nil
}

type fakeStores struct {
	names []string
	added []string
	err   error
}

func (f *fakeStores) ListNames(context.Context) ([]string, error) {
	return f.names, nil
}

func (f *fakeStores) AddIfNotExists(_ context.Context, name string) error {
	f.added = append(f.added, name)
	return f.err
}

type fakeGuard struct {
	allowed  bool
	err      error
	recorded int
}

func (f *fakeGuard) Allowed(context.Context, string) (bool, error) {
	return f.allowed, f.err
}

func (f *fakeGuard) RecordBad(context.Context, string) (int64, error) {
	f.recorded++
	return int64(f.recorded), nil
}

type fakeAnalyzer struct {
	analysis    *gemini.ReceiptAnalysis
	err         error
	calls       int
	instruction string
}

func (f *fakeAnalyzer) AnalyzeReceipt(_ context.Context, _ []byte, _, instruction string) (*gemini.ReceiptAnalysis, error) {
	f.calls++
	f.instruction = instruction
	return f.analysis, f.err
}

type fakeTextCheck struct {
	ok  bool
	err error
}

func (f fakeTextCheck) HasReceiptText(context.Context, []byte, string) (bool, error) {
	return f.ok, f.err
}

type fakeReconciler struct {
	store   string
	items   []catalog.Item
	updated int
}

func (f *fakeReconciler) Reconcile(_ context.Context, storeName string, items []catalog.Item) int {
	f.store = storeName
	f.items = items
	return f.updated
}

type fakeQueue struct {
	jobs []models.RewardJob
	full bool
}

func (f *fakeQueue) Enqueue(job models.RewardJob) bool {
	if f.full {
		return false
	}
	f.jobs = append(f.jobs, job)
	return true
}

type fakeUsers struct {
	known     map[string]bool
	month     string
	delta     models.StatsDelta
	penalized int
	top       []models.LeaderboardEntry
	details   map[string]*models.ScoreDetail
}

func (f *fakeUsers) UpdateStats(_ context.Context, id, month string, delta models.StatsDelta) (bool, error) {
	f.month = month
	f.delta = delta
	return f.known[id], nil
}

func (f *fakeUsers) Penalize(_ context.Context, id string, points int) (bool, error) {
	f.penalized += points
	return f.known[id], nil
}

func (f *fakeUsers) TopUsers(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeUsers) ScoreDetail(_ context.Context, id string) (*models.ScoreDetail, error) {
	return f.details[id], nil
}

func strPtr(s string) *string { return &s }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

type fakeArchive struct {
	url string
	err error
	key string
}

func (f *fakeArchive) Store(_ context.Context, userID, receiptID string, _ []byte, _ string) (string, error) {
	f.key = userID + "/" + receiptID
	return f.url, f.err
}
