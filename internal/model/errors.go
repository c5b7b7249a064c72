// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, onboarding, vote, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeEmailInUse           = "EMAIL_IN_USE"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeOnboardingIncomplete = "ONBOARDING_INCOMPLETE"
	ErrCodePreferenceNotFound   = "PREFERENCE_NOT_FOUND"
	ErrCodeInvalidVoteValue     = "INVALID_VOTE_VALUE"
	ErrCodeInvalidSection       = "INVALID_SECTION"
	ErrCodeMissingItemID        = "MISSING_ITEM_ID"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
// トークンの欠落・期限切れ・署名不正はすべてこのエラーに集約する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// 未登録メールアドレスとパスワード不一致で同一のエラーを返し、ユーザー列挙を防ぐ。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewEmailInUseError はメールアドレス重複エラーを生成する。
func NewEmailInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailInUse,
		Message:  "このメールアドレスは既に使用されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewOnboardingIncompleteError はオンボーディング未完了エラーを生成する。
func NewOnboardingIncompleteError() *APIError {
	return &APIError{
		Code:     ErrCodeOnboardingIncomplete,
		Message:  "オンボーディングが完了していません。",
		Category: "onboarding",
		Action:   "表示する銘柄とコンテンツを設定してください。",
	}
}

// NewPreferenceNotFoundError は設定未保存エラーを生成する。
func NewPreferenceNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePreferenceNotFound,
		Message:  "設定がまだ保存されていません。",
		Category: "onboarding",
		Action:   "オンボーディングを完了してください。",
	}
}

// NewInvalidVoteValueError は投票値不正エラーを生成する。
func NewInvalidVoteValueError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidVoteValue,
		Message:  "無効な投票値です。",
		Category: "vote",
		Action:   "投票値には 1 / -1 / up / down のいずれかを指定してください。",
	}
}

// NewInvalidSectionError はセクション不正エラーを生成する。
func NewInvalidSectionError(section string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSection,
		Message:  fmt.Sprintf("無効なセクションです: %s", section),
		Category: "vote",
		Action:   "セクションには NEWS、PRICES、INSIGHT、MEME のいずれかを指定してください。",
	}
}

// NewMissingItemIDError はアイテムID未指定エラーを生成する。
func NewMissingItemIDError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingItemID,
		Message:  "itemIdは必須です。",
		Category: "vote",
		Action:   "投票対象のitemIdを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
