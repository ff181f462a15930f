package analyzer

import (
	"fmt"

	"github.com/shouni/gemini-medscan-kit/pkg/domain"
	"github.com/shouni/gemini-medscan-kit/pkg/utils"
)

// DefaultConfidenceThreshold は診断を差し替える信頼度の下限（パーセント）です。
const DefaultConfidenceThreshold = 70

// ApplyConfidencePolicy は解析済みの診断結果に事後の信頼度ポリシーを適用します。
// Confidence が数値として解釈できない場合は結果を無変更で返します。
// 解釈できた値が threshold を厳密に下回る場合のみ、新しい結果を生成して
// diagnosis を RequiresFurtherReview に差し替え、uncertaintyStatement の先頭に
// 閾値・観測された信頼度・元の診断を記録した定型の開示文を付加します。
// 他のフィールドには触れません。純粋関数であり、1 回の呼び出しにつき
// ちょうど 1 度だけ適用します。
func ApplyConfidencePolicy(res domain.DiagnosisResult, threshold float64) domain.DiagnosisResult {
	v, err := utils.ParsePercent(res.Confidence)
	if err != nil {
		return res
	}
	if v >= threshold {
		return res
	}

	out := res
	out.Diagnosis = domain.DiagnosisRequiresFurtherReview
	out.UncertaintyStatement = fmt.Sprintf(
		"信頼度 %s が基準値 %.0f%% を下回ったため、元の診断「%s」は「%s」に差し替えられました。\n%s",
		res.Confidence, threshold, res.Diagnosis, domain.DiagnosisRequiresFurtherReview,
		res.UncertaintyStatement,
	)
	return out
}
