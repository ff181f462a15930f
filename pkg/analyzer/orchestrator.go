package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-medscan-kit/pkg/domain"
	"github.com/shouni/gemini-medscan-kit/pkg/gateway"
	"github.com/shouni/gemini-medscan-kit/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// 成果物スロットの表示名。欠落時のエラーメッセージに使う。
const (
	slotClassification          = "構造化分類"
	slotHeatmap                 = "ヒートマップ"
	slotSegmentation            = "セグメンテーションマップ"
	slotSegmentationUncertainty = "セグメンテーション不確実性マップ"
)

// Orchestrator は 1 枚の画像に対する複数リクエストの解析呼び出しを駆動します。
type Orchestrator struct {
	gw        InferenceGateway
	threshold float64
}

// NewOrchestrator は既定の信頼度閾値でオーケストレーターを初期化します。
func NewOrchestrator(gw InferenceGateway) (*Orchestrator, error) {
	if gw == nil {
		return nil, fmt.Errorf("gw (InferenceGateway) is required")
	}
	return &Orchestrator{gw: gw, threshold: DefaultConfidenceThreshold}, nil
}

// Run は 1 回のオーケストレーション呼び出しを実行します。
//
// feedback が空なら初回モード: セグメンテーションマップ、不確実性マップ、
// 構造化分類、ヒートマップの 4 リクエストを同時に発行します。
// feedback があれば再解析モード: 分類とヒートマップの 2 リクエストのみを発行し、
// セグメンテーション系は再生成しません。
//
// 発行したリクエストがすべて完了してから検証と組み立てを行い、
// いずれかが失敗した場合は部分回復を試みず、分類済みエラーで呼び出し全体を
// 失敗させます。リトライは行いません。
func (o *Orchestrator) Run(ctx context.Context, img *domain.AnalyzableImage, feedback string) (*Outcome, error) {
	if img == nil {
		return nil, fmt.Errorf("img is required")
	}
	refined := feedback != ""
	slog.InfoContext(ctx, "解析リクエストをファンアウトします",
		"image_id", img.ID, "refined", refined)

	var (
		classificationText string
		heatmap            *domain.ImageArtifact
		segmented          *domain.ImageArtifact
		segUncertainty     *domain.ImageArtifact
	)

	// 発行済みリクエストを先行失敗で打ち切らないため、WithContext は使わない。
	// すべてのリクエストが完了するまで合流を待つ。
	var g errgroup.Group

	g.Go(func() error {
		txt, err := o.gw.GenerateStructured(ctx, img.Data, img.MimeType,
			classificationInstruction(feedback), classificationSystem)
		if err != nil {
			return wrapSlotError(slotClassification, err)
		}
		classificationText = txt
		return nil
	})

	g.Go(func() error {
		art, err := o.gw.GenerateImage(ctx, img.Data, img.MimeType, heatmapInstruction(feedback))
		if err != nil {
			return wrapSlotError(slotHeatmap, err)
		}
		heatmap = art
		return nil
	})

	if !refined {
		g.Go(func() error {
			art, err := o.gw.GenerateImage(ctx, img.Data, img.MimeType, instructionSegmentation)
			if err != nil {
				return wrapSlotError(slotSegmentation, err)
			}
			segmented = art
			return nil
		})

		g.Go(func() error {
			art, err := o.gw.GenerateImage(ctx, img.Data, img.MimeType, instructionSegmentationUncertainty)
			if err != nil {
				return wrapSlotError(slotSegmentationUncertainty, err)
			}
			segUncertainty = art
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, asAnalysisError(err)
	}

	// ファンイン: まず分類レスポンスを検証する。解釈できなければここで打ち切り。
	res, err := parseDiagnosisResult(classificationText)
	if err != nil {
		return nil, err
	}

	applied := ApplyConfidencePolicy(*res, o.threshold)

	// スロットごとの存在チェック。ヒートマップは両モードで必須。
	if err := requireArtifact(heatmap, slotHeatmap); err != nil {
		return nil, err
	}
	if !refined {
		if err := requireArtifact(segmented, slotSegmentation); err != nil {
			return nil, err
		}
		if err := requireArtifact(segUncertainty, slotSegmentationUncertainty); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "解析呼び出しが完了しました",
		"image_id", img.ID, "diagnosis", applied.Diagnosis, "refined", refined)

	return &Outcome{
		Result:                  &applied,
		Heatmap:                 heatmap,
		Segmented:               segmented,
		SegmentationUncertainty: segUncertainty,
		Refined:                 refined,
	}, nil
}

// wrapSlotError はゲートウェイ失敗をスロット名付きの分類済みエラーに変換します。
func wrapSlotError(slot string, err error) error {
	switch {
	case errors.Is(err, gateway.ErrNoImagePayload):
		return &AnalysisError{Category: CategoryMissingArtifact, Detail: slot, Err: err}
	case errors.Is(err, gateway.ErrEmptyResponse):
		return &AnalysisError{Category: CategoryInvalidResponseFormat, Detail: slot, Err: err}
	default:
		return &AnalysisError{Category: Classify(err), Err: err}
	}
}

// asAnalysisError は任意のエラーを AnalysisError に揃えます。
func asAnalysisError(err error) *AnalysisError {
	var aerr *AnalysisError
	if errors.As(err, &aerr) {
		return aerr
	}
	return &AnalysisError{Category: Classify(err), Err: err}
}

// parseDiagnosisResult は分類レスポンスのテキストを DiagnosisResult として
// 解釈・検証します。失敗は CategoryInvalidResponseFormat として致命的です。
func parseDiagnosisResult(text string) (*domain.DiagnosisResult, *AnalysisError) {
	cleaned := utils.StripCodeFences(text)

	var res domain.DiagnosisResult
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, &AnalysisError{Category: CategoryInvalidResponseFormat, Err: fmt.Errorf("JSONを解釈できません: %w", err)}
	}

	if !res.Diagnosis.IsClinical() {
		return nil, &AnalysisError{Category: CategoryInvalidResponseFormat, Err: fmt.Errorf("未知の診断カテゴリです: %q", res.Diagnosis)}
	}
	// スキーマ定義と同じ順で検証し、欠落報告を決定的にする
	required := []struct {
		name  string
		value string
	}{
		{"confidence", res.Confidence},
		{"explanation", res.Explanation},
		{"explainability", res.Explainability},
		{"uncertaintyStatement", res.UncertaintyStatement},
		{"segmentationUncertaintyStatement", res.SegmentationUncertaintyStatement},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, &AnalysisError{Category: CategoryInvalidResponseFormat, Err: fmt.Errorf("必須フィールドが欠けています: %s", f.name)}
		}
	}

	// 数値形も保持する。解釈できないテキストは原文のまま残し、番兵値を入れる。
	if v, err := utils.ParsePercent(res.Confidence); err == nil {
		res.ConfidenceValue = v
	} else {
		res.ConfidenceValue = domain.ConfidenceUnparsed
	}

	return &res, nil
}

// requireArtifact は画像スロットの存在と内容を検証します。
func requireArtifact(art *domain.ImageArtifact, slot string) error {
	if art == nil || len(art.Data) == 0 {
		return &AnalysisError{
			Category: CategoryMissingArtifact,
			Detail:   slot,
			Err:      gateway.ErrNoImagePayload,
		}
	}
	return nil
}
