package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/middleware"
	"github.com/wweverma1/pocket-ninja-backend/internal/models"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

type receiptLister interface {
	ListReceipts(ctx context.Context, userID, month string) ([]models.Receipt, error)
}

// ReceiptHandler serves a user's submitted receipts.
type ReceiptHandler struct {
	receipts receiptLister
}

// NewReceiptHandler constructs a ReceiptHandler.
func NewReceiptHandler(receipts receiptLister) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// List returns the caller's receipts for ?month=YYYY-MM, defaulting to the current month.
// @Router /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	receipts, err := h.receipts.ListReceipts(c.Request.Context(), userID, c.Query("month"))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list receipts")
		utils.Error(c, http.StatusInternalServerError, utils.ErrInternal.Error(), utils.MsgInternalError)
		return
	}

	utils.Success(c, http.StatusOK, utils.Msg("Receipts fetched successfully.", "領収書の取得に成功しました。"), receipts)
}
