package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/wweverma1/pocket-ninja-backend/internal/catalog"
	"github.com/wweverma1/pocket-ninja-backend/internal/metrics"
	"github.com/wweverma1/pocket-ninja-backend/internal/models"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
	"github.com/wweverma1/pocket-ninja-backend/pkg/gemini"
)

var (
	msgUploadForbidden = utils.Msg(
		"Uploads forbidden due to repeated bad uploads. Please try again in 24 hours.",
		"不正なアップロードが続いたため、24時間制限されています。")
	msgAnalysisFailed = utils.Msg(
		"AI Analysis failed. Please try again.",
		"AI分析に失敗しました。もう一度お試しください。")
	msgNoProducts = utils.Msg(
		"No products found in receipt.",
		"レシートに商品が見つかりませんでした。")
	msgProcessed = utils.Msg(
		"Receipt processed successfully!",
		"レシートの処理が完了しました！")
	msgUnknownRejection = utils.Msg(
		"Unknown validation error.",
		"不明なエラーが発生しました。")
)

var rejectionMessages = map[int]utils.Message{
	gemini.CodeNotReceipt:         utils.Msg("Receipt is not from a supported store.", "レシートはサポートされているストアのものではありません。"),
	gemini.CodeEdited:             utils.Msg("Receipt appears edited.", "レシートが編集されている可能性があります。"),
	gemini.CodeDateOutOfRange:     utils.Msg("Receipt date is too old or invalid.", "レシートの日付が古すぎるか、無効です。"),
	gemini.CodeDateUnreadable:     utils.Msg("Could not read the date on the receipt.", "レシートの日付を読み取れませんでした。"),
	gemini.CodeOutsideCity:        utils.Msg("Store is not located in Sapporo.", "店舗が札幌市外のようです。"),
	gemini.CodeLocationUnreadable: utils.Msg("Could not read store location on the receipt.", "店舗の場所を特定できませんでした。"),
	gemini.CodeStoreUnreadable:    utils.Msg("Could not read store name on the receipt.", "店舗名を特定できませんでした。"),
}

// RejectionMessage returns the user-facing message for a validation error code.
func RejectionMessage(code int) utils.Message {
	if m, ok := rejectionMessages[code]; ok {
		return m
	}
	return msgUnknownRejection
}

// ReceiptError is a receipt processing failure with its user-facing message.
// Err is one of the utils sentinel errors. Result is the analysis explaining
// the rejection, when there is one.
type ReceiptError struct {
	Err     error
	Message utils.Message
	Result  interface{}
}

func (e *ReceiptError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message.EN)
}

func (e *ReceiptError) Unwrap() error {
	return e.Err
}

// ReceiptResult is returned for a successfully processed receipt.
type ReceiptResult struct {
	ReceiptID       string          `json:"receiptId"`
	Store           string          `json:"store"`
	ProductsFound   int             `json:"products_found"`
	ProductsUpdated int             `json:"products_updated"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// Message is the success message shown with the result.
func (r *ReceiptResult) Message() utils.Message {
	return msgProcessed
}

type receiptStore interface {
	Create(ctx context.Context, userID string) (*models.Receipt, error)
	UpdateStatus(ctx context.Context, id string, upd models.ReceiptUpdate) error
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]models.Receipt, error)
}

type uploadGuard interface {
	Allowed(ctx context.Context, userID string) (bool, error)
	RecordBad(ctx context.Context, userID string) (int64, error)
}

type receiptAnalyzer interface {
	AnalyzeReceipt(ctx context.Context, image []byte, mimeType, instruction string) (*gemini.ReceiptAnalysis, error)
}

// TextChecker screens images before analysis.
type TextChecker interface {
	HasReceiptText(ctx context.Context, image []byte, mimeType string) (bool, error)
}

// ImageArchive keeps a copy of uploaded receipt images.
type ImageArchive interface {
	Store(ctx context.Context, userID, receiptID string, image []byte, mimeType string) (string, error)
}

type catalogReconciler interface {
	Reconcile(ctx context.Context, storeName string, items []catalog.Item) int
}

// RewardQueue accepts deferred stats updates. Enqueue reports false when the job was dropped.
type RewardQueue interface {
	Enqueue(job models.RewardJob) bool
}

// ReceiptService turns an uploaded receipt image into catalog updates.
type ReceiptService struct {
	receipts   receiptStore
	stores     storeRegistry
	guard      uploadGuard
	analyzer   receiptAnalyzer
	textCheck  TextChecker
	archive    ImageArchive
	reconciler catalogReconciler
	rewards    RewardQueue
	targetCity string
	now        func() time.Time
}

// NewReceiptService creates a new ReceiptService. textCheck and archive may be
// nil to skip the text pre-check and image archiving.
func NewReceiptService(
	receipts receiptStore,
	stores storeRegistry,
	guard uploadGuard,
	analyzer receiptAnalyzer,
	textCheck TextChecker,
	archive ImageArchive,
	reconciler catalogReconciler,
	rewards RewardQueue,
	targetCity string,
) *ReceiptService {
	return &ReceiptService{
		receipts:   receipts,
		stores:     stores,
		guard:      guard,
		analyzer:   analyzer,
		textCheck:  textCheck,
		archive:    archive,
		reconciler: reconciler,
		rewards:    rewards,
		targetCity: targetCity,
		now:        time.Now,
	}
}

// ProcessReceipt validates and analyzes a receipt image uploaded by userID and
// reconciles its products into the catalog. Failures visible to the user are
// returned as *ReceiptError.
func (s *ReceiptService) ProcessReceipt(ctx context.Context, userID string, image []byte, mimeType string) (*ReceiptResult, error) {
	// 1. Refuse users with repeated bad uploads
	allowed, err := s.guard.Allowed(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Upload guard unavailable, allowing upload")
		allowed = true
	}
	if !allowed {
		metrics.ReceiptsTotal.WithLabelValues("forbidden").Inc()
		return nil, &ReceiptError{Err: utils.ErrUploadForbidden, Message: msgUploadForbidden}
	}

	// 2. Track the attempt
	receipt, err := s.receipts.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}
	logger := log.With().Str("user_id", userID).Str("receipt_id", receipt.ID).Logger()
	at := &attempt{receiptID: receipt.ID, userID: userID}

	if s.archive != nil {
		url, err := s.archive.Store(ctx, userID, receipt.ID, image, mimeType)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to archive receipt image")
		}
		at.imageURL = url
	}

	// 3. Cheap text pre-check
	if s.textCheck != nil {
		ok, err := s.textCheck.HasReceiptText(ctx, image, mimeType)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("Text pre-check failed, continuing")
		case !ok:
			return nil, s.reject(ctx, at, gemini.CodeNotReceipt, nil)
		}
	}

	// 4. Analyze
	stores, err := s.stores.ListNames(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to list stores")
	}
	instruction := gemini.BuildInstruction(s.now().UTC().Format("2006-01-02"), s.targetCity, stores)

	start := time.Now()
	analysis, err := s.analyzer.AnalyzeReceipt(ctx, image, mimeType, instruction)
	metrics.ReceiptAnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error().Err(err).Msg("Receipt analysis failed")
		return nil, s.fail(ctx, at, &ReceiptError{Err: utils.ErrAnalysisFailed, Message: msgAnalysisFailed})
	}

	// 5. Validation verdict
	storeName := ""
	if analysis.StoreName != nil {
		storeName = CanonicalStoreName(*analysis.StoreName, stores)
	}
	if analysis.ErrorCode == gemini.CodeOK && storeName == "" {
		analysis.ErrorCode = gemini.CodeStoreUnreadable
	}
	if analysis.ErrorCode != gemini.CodeOK {
		return nil, s.reject(ctx, at, analysis.ErrorCode, analysis)
	}

	// 6. Nothing to contribute
	if len(analysis.Products) == 0 {
		return nil, s.fail(ctx, at, &ReceiptError{Err: utils.ErrNoProductsFound, Message: msgNoProducts, Result: analysis})
	}

	// 7. Reconcile into the catalog
	items := make([]catalog.Item, 0, len(analysis.Products))
	for _, p := range analysis.Products {
		items = append(items, catalog.Item{Name: p.Name, EnglishName: p.EnglishName, Price: p.Price})
	}
	updated := s.reconciler.Reconcile(ctx, storeName, items)

	// 8. Reward in the background
	queued := s.rewards.Enqueue(models.RewardJob{
		Kind:          models.RewardKindReward,
		UserID:        userID,
		StoreName:     storeName,
		Contributions: updated,
		Expenditure:   analysis.TotalAmount,
	})
	if !queued {
		logger.Warn().Int("contributions", updated).Msg("Reward job dropped")
	}

	// 9. Done
	result := &ReceiptResult{
		ReceiptID:       receipt.ID,
		Store:           storeName,
		ProductsFound:   len(analysis.Products),
		ProductsUpdated: updated,
		TotalAmount:     analysis.TotalAmount,
	}
	err = s.receipts.UpdateStatus(ctx, receipt.ID, models.ReceiptUpdate{
		Status:          models.ReceiptStatusSuccess,
		Result:          receiptRecord(msgProcessed, result),
		StoreName:       storeName,
		TotalAmount:     analysis.TotalAmount,
		ProductsFound:   result.ProductsFound,
		ProductsUpdated: updated,
		ImageURL:        at.imageURL,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to mark receipt successful")
	}

	metrics.ReceiptsTotal.WithLabelValues("success").Inc()
	logger.Info().
		Str("store", storeName).
		Int("products_found", result.ProductsFound).
		Int("products_updated", updated).
		Msg("Receipt processed")
	return result, nil
}

// ListReceipts returns the user's receipts submitted in month ("YYYY-MM"),
// newest first. An empty month selects the current UTC month; a malformed
// month yields no receipts.
func (s *ReceiptService) ListReceipts(ctx context.Context, userID, month string) ([]models.Receipt, error) {
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return []models.Receipt{}, nil
	}

	receipts, err := s.receipts.ListByUser(ctx, userID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	return receipts, nil
}

// attempt identifies one upload being processed.
type attempt struct {
	receiptID string
	userID    string
	imageURL  string
}

// reject handles an invalid receipt: the bad upload is counted and penalized.
func (s *ReceiptService) reject(ctx context.Context, at *attempt, code int, analysis *gemini.ReceiptAnalysis) error {
	if _, err := s.guard.RecordBad(ctx, at.userID); err != nil {
		log.Warn().Err(err).Str("user_id", at.userID).Msg("Failed to record bad upload")
	}
	if !s.rewards.Enqueue(models.RewardJob{Kind: models.RewardKindPenalty, UserID: at.userID}) {
		log.Warn().Str("user_id", at.userID).Msg("Penalty job dropped")
	}

	rerr := &ReceiptError{Err: utils.ErrReceiptRejected, Message: RejectionMessage(code)}
	if analysis != nil {
		rerr.Result = analysis
	}
	return s.fail(ctx, at, rerr)
}

// fail marks the receipt FAILED with the error as its result and returns rerr.
func (s *ReceiptService) fail(ctx context.Context, at *attempt, rerr *ReceiptError) error {
	metrics.ReceiptsTotal.WithLabelValues("failed").Inc()
	err := s.receipts.UpdateStatus(ctx, at.receiptID, models.ReceiptUpdate{
		Status:   models.ReceiptStatusFailed,
		Result:   receiptRecord(rerr.Message, rerr.Result),
		ImageURL: at.imageURL,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("receipt_id", at.receiptID).Msg("Failed to mark receipt failed")
	}
	return rerr
}

func receiptRecord(msg utils.Message, result interface{}) map[string]interface{} {
	return map[string]interface{}{
		"message": msg,
		"result":  result,
	}
}

// CanonicalStoreName folds full-width and compatibility characters, collapses
// whitespace and, when the name matches a known store case-insensitively,
// returns the known spelling.
func CanonicalStoreName(name string, known []string) string {
	folded := width.Fold.String(norm.NFKC.String(name))
	folded = strings.Join(strings.Fields(folded), " ")
	for _, k := range known {
		if strings.EqualFold(k, folded) {
			return k
		}
	}
	return folded
}
