package analyzer

import (
	"testing"

	"github.com/shouni/gemini-medscan-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
)

func baseResult(confidence string) domain.DiagnosisResult {
	return domain.DiagnosisResult{
		Diagnosis:                        domain.DiagnosisViralPneumonia,
		Confidence:                       confidence,
		Explanation:                      "両側にすりガラス影。",
		Explainability:                   "分布がウイルス性肺炎に典型的。",
		UncertaintyStatement:             "画質の影響で末梢の評価が限定的。",
		SegmentationUncertaintyStatement: "境界の一部が不明瞭。",
		AnomalyReport:                    "軽度の心拡大を併記。",
	}
}

func TestApplyConfidencePolicy(t *testing.T) {
	t.Run("閾値未満は要再検査に差し替えられるのだ", func(t *testing.T) {
		in := baseResult("45%")

		out := ApplyConfidencePolicy(in, DefaultConfidenceThreshold)

		assert.Equal(t, domain.DiagnosisRequiresFurtherReview, out.Diagnosis)
		// 開示文に元の診断・観測値・閾値の記録が残る
		assert.Contains(t, out.UncertaintyStatement, string(domain.DiagnosisViralPneumonia))
		assert.Contains(t, out.UncertaintyStatement, "45%")
		assert.Contains(t, out.UncertaintyStatement, "70")
		// 元の不確実性テキストも末尾に残る
		assert.Contains(t, out.UncertaintyStatement, in.UncertaintyStatement)
		// 他のフィールドは無変更
		assert.Equal(t, in.Confidence, out.Confidence)
		assert.Equal(t, in.Explanation, out.Explanation)
		assert.Equal(t, in.Explainability, out.Explainability)
		assert.Equal(t, in.SegmentationUncertaintyStatement, out.SegmentationUncertaintyStatement)
		assert.Equal(t, in.AnomalyReport, out.AnomalyReport)
	})

	t.Run("閾値ちょうどは無変更なのだ", func(t *testing.T) {
		in := baseResult("70%")
		out := ApplyConfidencePolicy(in, DefaultConfidenceThreshold)
		assert.Equal(t, in, out)
	})

	t.Run("閾値超過は無変更なのだ", func(t *testing.T) {
		in := baseResult("92.5%")
		out := ApplyConfidencePolicy(in, DefaultConfidenceThreshold)
		assert.Equal(t, in, out)
	})

	t.Run("解釈できない信頼度は原文のまま無変更なのだ", func(t *testing.T) {
		in := baseResult("kind of high")
		out := ApplyConfidencePolicy(in, DefaultConfidenceThreshold)
		assert.Equal(t, in, out)
		assert.Equal(t, "kind of high", out.Confidence)
	})

	t.Run("入力の結果は書き換えられないのだ", func(t *testing.T) {
		in := baseResult("10%")
		_ = ApplyConfidencePolicy(in, DefaultConfidenceThreshold)
		assert.Equal(t, domain.DiagnosisViralPneumonia, in.Diagnosis)
	})
}
