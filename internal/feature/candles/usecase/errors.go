package usecase

import (
	"context"
	"errors"
)

// ErrInvalidBatch はバッチ番号または総バッチ数が不正な場合に返されます。
var ErrInvalidBatch = errors.New("invalid batch configuration")

// FailureClassifier は銘柄単位のフェッチ失敗を分類するインターフェースです。
// アダプター側のエラー型が実装します。
type FailureClassifier interface {
	FailureKind() string
}

// classifyFailure は1銘柄の失敗理由をレスポンス用の分類文字列に変換します。
func classifyFailure(err error) string {
	var fc FailureClassifier
	if errors.As(err, &fc) {
		return fc.FailureKind()
	}
	// リクエスト全体のデッドライン超過で打ち切られた銘柄はタイムアウト扱い
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}
	return "error"
}
