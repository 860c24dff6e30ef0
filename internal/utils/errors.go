package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken    = errors.New("INVALID_TOKEN")
	ErrUserNotFound    = errors.New("USER_NOT_FOUND")
	ErrUploadForbidden = errors.New("UPLOAD_FORBIDDEN")
	ErrInvalidImage    = errors.New("INVALID_IMAGE")
	ErrAnalysisFailed  = errors.New("ANALYSIS_FAILED")
	ErrReceiptRejected = errors.New("RECEIPT_REJECTED")
	ErrNoProductsFound = errors.New("NO_PRODUCTS_FOUND")
	ErrInvalidMonth    = errors.New("INVALID_MONTH")
	ErrRateLimited     = errors.New("RATE_LIMITED")
	ErrNotImplemented  = errors.New("NOT_IMPLEMENTED")
	ErrInternal        = errors.New("INTERNAL_ERROR")
)

// Common bilingual messages.
var (
	MsgInternalError  = Msg("Internal server error.", "内部サーバーエラー。")
	MsgNotImplemented = Msg("API Not implemented yet", "APIはまだ実装されていません")
	MsgUnauthorized   = Msg("Authorization header is missing or invalid", "認証ヘッダーがないか無効です")
	MsgInvalidToken   = Msg("Token is invalid", "トークンが無効です")
	MsgUserGone       = Msg("Token is valid but user no longer exists", "トークンは有効ですが、ユーザーが存在しません")
	MsgRateLimited    = Msg("Too many uploads. Please slow down.", "アップロードが多すぎます。しばらくしてからお試しください。")
)

