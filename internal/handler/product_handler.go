package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/middleware"
	"github.com/wweverma1/pocket-ninja-backend/internal/service"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

// receiptFormField is the multipart field carrying the receipt image.
const receiptFormField = "receiptImage"

var (
	msgNoImage     = utils.Msg("No receipt image provided.", "領収書の画像が提供されていません。")
	msgNotAnImage  = utils.Msg("Image processing failed.", "画像処理に失敗しました。")
	msgImageTooBig = utils.Msg("Receipt image is too large.", "領収書の画像が大きすぎます。")
)

type receiptProcessor interface {
	ProcessReceipt(ctx context.Context, userID string, image []byte, mimeType string) (*service.ReceiptResult, error)
}

// ProductHandler handles product-related HTTP endpoints.
type ProductHandler struct {
	receipts receiptProcessor
	maxBytes int64
}

// NewProductHandler constructs a ProductHandler accepting images up to maxBytes.
func NewProductHandler(receipts receiptProcessor, maxBytes int64) *ProductHandler {
	return &ProductHandler{receipts: receipts, maxBytes: maxBytes}
}

// UpdateDetails accepts a receipt photo and contributes its prices to the catalog.
// @Router /product/details [put]
func (h *ProductHandler) UpdateDetails(c *gin.Context) {
	userID := middleware.GetUserID(c)

	// 1. Bound the body before multipart parsing
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	file, _, err := c.Request.FormFile(receiptFormField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.Error(c, http.StatusRequestEntityTooLarge, utils.ErrInvalidImage.Error(), msgImageTooBig)
			return
		}
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidImage.Error(), msgNoImage)
		return
	}
	defer file.Close()

	// 2. Read and sniff the image
	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidImage.Error(), msgNotAnImage)
		return
	}
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidImage.Error(), msgNotAnImage)
		return
	}

	// 3. Process
	result, err := h.receipts.ProcessReceipt(c.Request.Context(), userID, image, mimeType)
	if err != nil {
		var rerr *service.ReceiptError
		if errors.As(err, &rerr) {
			utils.Error(c, receiptErrorStatus(rerr), rerr.Err.Error(), rerr.Message, rerr.Result)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Receipt processing failed")
		utils.Error(c, http.StatusInternalServerError, utils.ErrInternal.Error(), utils.MsgInternalError)
		return
	}

	utils.Success(c, http.StatusOK, result.Message(), result)
}

// GetDetails is reserved for product lookups.
// @Router /product/details [get]
func (h *ProductHandler) GetDetails(c *gin.Context) {
	utils.Error(c, http.StatusNotImplemented, utils.ErrNotImplemented.Error(), utils.MsgNotImplemented)
}

func receiptErrorStatus(rerr *service.ReceiptError) int {
	switch {
	case errors.Is(rerr, utils.ErrUploadForbidden):
		return http.StatusForbidden
	case errors.Is(rerr, utils.ErrAnalysisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
