// Package analyzer は 1 枚の画像に対する解析オーケストレーションを担当します。
// 推論リクエストのファンアウト/ファンイン、結果の検証と組み立て、
// 信頼度ポリシーの適用、失敗の分類を行います。
package analyzer

import (
	"context"
	"fmt"

	"github.com/shouni/gemini-medscan-kit/pkg/domain"
)

// InferenceGateway はオーケストレーターが利用するリモート推論の窓口です。
// gateway.GeminiGateway が実装します。
type InferenceGateway interface {
	// GenerateStructured は構造化出力（JSONテキスト）を要求します。
	GenerateStructured(ctx context.Context, data []byte, mimeType, instruction, system string) (string, error)
	// GenerateImage は画像出力を要求します。
	GenerateImage(ctx context.Context, data []byte, mimeType, instruction string) (*domain.ImageArtifact, error)
}

// Outcome は 1 回のオーケストレーション呼び出しの集約結果です。
// Refined が真の場合、セグメンテーション系の 2 枚は生成されず nil のままです。
// 呼び出し側は保存済みの値を保持し続けます。
type Outcome struct {
	Result                  *domain.DiagnosisResult
	Heatmap                 *domain.ImageArtifact
	Segmented               *domain.ImageArtifact
	SegmentationUncertainty *domain.ImageArtifact
	Refined                 bool
}

// AnalysisError は分類済みの解析失敗です。呼び出し側はカテゴリ別の
// 利用者向けメッセージを UserMessage で取得できます。
type AnalysisError struct {
	Category ErrorCategory
	Detail   string
	Err      error
}

func (e *AnalysisError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s): %v", e.Category, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// UserMessage はカテゴリに対応する固定の利用者向けメッセージを返します。
// Detail がある場合（欠落した成果物の名前など）は併記します。
func (e *AnalysisError) UserMessage() string {
	msg := e.Category.Message()
	if e.Detail != "" {
		return fmt.Sprintf("%s（%s）", msg, e.Detail)
	}
	return msg
}
