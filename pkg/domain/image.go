package domain

import "github.com/google/uuid"

// ImageStatus は AnalyzableImage のライフサイクル状態です。
type ImageStatus string

const (
	StatusPending ImageStatus = "pending"
	StatusLoading ImageStatus = "loading"
	StatusSuccess ImageStatus = "success"
	StatusError   ImageStatus = "error"
)

// PreviewHandle は UI 表示用の一時リソース（オブジェクトURL等）への参照です。
// エンティティ削除時に Release が呼ばれます。
type PreviewHandle interface {
	Release()
}

// ImageArtifact は生成された画像データとそのメディアタイプです。
type ImageArtifact struct {
	Data     []byte
	MimeType string
}

// AnalyzableImage は利用者が投入した 1 枚の画像と、その解析結果一式を保持します。
// 生成画像は段階的に埋まる: ヒートマップは成功のたびに更新され、
// セグメンテーション系の 2 枚は初回解析の成功時にのみ生成される。
type AnalyzableImage struct {
	ID       uuid.UUID
	Name     string
	Data     []byte
	MimeType string
	Preview  PreviewHandle

	Status       ImageStatus
	Result       *DiagnosisResult
	ErrorMessage string

	SegmentedImage               *ImageArtifact
	HeatmapImage                 *ImageArtifact
	SegmentationUncertaintyImage *ImageArtifact
}
