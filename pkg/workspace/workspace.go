// Package workspace は投入された画像の集合と、その解析ライフサイクルを管理します。
// 集合への変更はすべてこのパッケージの名前付き操作を通してのみ行われ、
// 各操作は観測者から見て原子的に適用されます。
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/gemini-medscan-kit/pkg/analyzer"
	"github.com/shouni/gemini-medscan-kit/pkg/domain"
	"github.com/shouni/gemini-medscan-kit/pkg/imgutil"

	"github.com/google/uuid"
)

// ErrImageNotFound は指定された ID の画像が存在しないことを示します。
var ErrImageNotFound = errors.New("指定された画像が見つかりません")

// AnalysisRunner は 1 枚の画像に対する解析呼び出しの抽象です。
// analyzer.Orchestrator が実装します。
type AnalysisRunner interface {
	Run(ctx context.Context, img *domain.AnalyzableImage, feedback string) (*analyzer.Outcome, error)
}

// SourceFetcher はリモートのソース画像取得の抽象です。
// gateway.GeminiGateway が実装します。
type SourceFetcher interface {
	FetchSource(ctx context.Context, rawURL string) ([]byte, string, error)
}

// SubmittedFile は利用者が投入した 1 ファイルです。
type SubmittedFile struct {
	Name    string
	Data    []byte
	Preview domain.PreviewHandle
}

// Workspace は画像集合の単一の書き込み主体です。
// 解析の同時実行は 1 枚の画像の内部（ファンアウト）に限られ、
// 画像をまたぐバッチ処理は投入順に逐次実行されます。
type Workspace struct {
	mu      sync.Mutex
	images  []*domain.AnalyzableImage
	runner  AnalysisRunner
	fetcher SourceFetcher
}

// New は Workspace を初期化します。fetcher は nil を許容します
// （その場合 SubmitRemote は利用できません）。
func New(runner AnalysisRunner, fetcher SourceFetcher) (*Workspace, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner (AnalysisRunner) is required")
	}
	return &Workspace{runner: runner, fetcher: fetcher}, nil
}

// Submit はファイル群を pending 状態で集合に追加し、追加された ID を返します。
// 画像と判定できないファイルは黙って捨てます（警告ログのみ）。
func (w *Workspace) Submit(files []SubmittedFile) []uuid.UUID {
	w.mu.Lock()
	defer w.mu.Unlock()

	var added []uuid.UUID
	for _, f := range files {
		mimeType := imgutil.DetectImageMIME(f.Data)
		if mimeType == "" {
			slog.Warn("画像ではないファイルを無視します", "name", f.Name)
			continue
		}

		img := &domain.AnalyzableImage{
			ID:       uuid.New(),
			Name:     f.Name,
			Data:     f.Data,
			MimeType: mimeType,
			Preview:  f.Preview,
			Status:   domain.StatusPending,
		}
		w.images = append(w.images, img)
		added = append(added, img.ID)
	}
	return added
}

// SubmitRemote はリモート URL（http(s) または gs://）からソース画像を取得して
// 集合に追加します。
func (w *Workspace) SubmitRemote(ctx context.Context, rawURL string) (uuid.UUID, error) {
	if w.fetcher == nil {
		return uuid.Nil, fmt.Errorf("fetcher が設定されていないため SubmitRemote は利用できません")
	}

	data, mimeType, err := w.fetcher.FetchSource(ctx, rawURL)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ソース画像の取得に失敗しました: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	img := &domain.AnalyzableImage{
		ID:       uuid.New(),
		Name:     rawURL,
		Data:     data,
		MimeType: mimeType,
		Status:   domain.StatusPending,
	}
	w.images = append(w.images, img)
	return img.ID, nil
}

// AnalyzeAll は pending 状態の全画像を解析します。
// 対象が無ければ何もしません。対象があれば一括で loading に遷移させたのち、
// 投入順に 1 枚ずつ逐次処理します。各画像の成否はその画像の処理完了時点で
// 集合に確定され、1 枚の失敗が後続の処理を妨げることはありません。
func (w *Workspace) AnalyzeAll(ctx context.Context) {
	w.mu.Lock()
	var selection []*domain.AnalyzableImage
	for _, img := range w.images {
		if img.Status == domain.StatusPending {
			img.Status = domain.StatusLoading
			selection = append(selection, img)
		}
	}
	w.mu.Unlock()

	if len(selection) == 0 {
		return
	}
	slog.InfoContext(ctx, "バッチ解析を開始します", "count", len(selection))

	for _, img := range selection {
		outcome, err := w.runner.Run(ctx, img, "")
		w.commit(ctx, img.ID, outcome, err)
	}
}

// Refine は指定画像をフィードバック付きで再解析します。
// 成功時は診断とヒートマップのみを更新し、セグメンテーション系の保存値には
// 触れません。解析自体の失敗はエンティティに記録され、エラーとしては
// 返しません。返すエラーは対象が存在しない場合のみです。
func (w *Workspace) Refine(ctx context.Context, id uuid.UUID, feedback string) error {
	w.mu.Lock()
	img := w.find(id)
	if img == nil {
		w.mu.Unlock()
		return ErrImageNotFound
	}
	img.Status = domain.StatusLoading
	w.mu.Unlock()

	outcome, err := w.runner.Run(ctx, img, feedback)
	w.commit(ctx, id, outcome, err)
	return nil
}

// Delete は画像を集合から取り除き、表示用の一時リソースを解放します。
// 対象への解析呼び出しが進行中でも打ち切りません。その呼び出しの完了処理は
// エンティティの不在を検知して何もせず終わります。
func (w *Workspace) Delete(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, img := range w.images {
		if img.ID == id {
			w.images = append(w.images[:i], w.images[i+1:]...)
			if img.Preview != nil {
				img.Preview.Release()
			}
			return nil
		}
	}
	return ErrImageNotFound
}

// Images は集合のスナップショット（浅いコピー）を投入順で返します。
func (w *Workspace) Images() []domain.AnalyzableImage {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]domain.AnalyzableImage, len(w.images))
	for i, img := range w.images {
		out[i] = *img
	}
	return out
}

// Get は指定 ID の画像のスナップショットを返します。
func (w *Workspace) Get(id uuid.UUID) (domain.AnalyzableImage, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if img := w.find(id); img != nil {
		return *img, true
	}
	return domain.AnalyzableImage{}, false
}

// find は呼び出し側がロックを保持している前提の線形探索です。
func (w *Workspace) find(id uuid.UUID) *domain.AnalyzableImage {
	for _, img := range w.images {
		if img.ID == id {
			return img
		}
	}
	return nil
}

// commit は 1 回の解析呼び出しの結果を集合に確定します。
// エンティティが既に削除されていた場合は安全な no-op です。
func (w *Workspace) commit(ctx context.Context, id uuid.UUID, outcome *analyzer.Outcome, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	img := w.find(id)
	if img == nil {
		slog.InfoContext(ctx, "解析完了時点で画像が削除されていたため結果を破棄します", "image_id", id)
		return
	}

	if err != nil {
		img.Status = domain.StatusError
		img.ErrorMessage = userMessage(err)
		// 診断結果は success 状態でのみ保持する
		img.Result = nil
		slog.WarnContext(ctx, "解析が失敗しました", "image_id", id, "error", err)
		return
	}

	img.Status = domain.StatusSuccess
	img.ErrorMessage = ""
	img.Result = outcome.Result
	img.HeatmapImage = outcome.Heatmap
	if !outcome.Refined {
		// セグメンテーション系は初回解析でのみ生成される。
		// 再解析では保存済みの値に触れない。
		img.SegmentedImage = outcome.Segmented
		img.SegmentationUncertaintyImage = outcome.SegmentationUncertainty
	}
}

// userMessage は解析失敗から利用者向けメッセージを取り出します。
func userMessage(err error) string {
	var aerr *analyzer.AnalysisError
	if errors.As(err, &aerr) {
		return aerr.UserMessage()
	}
	return analyzer.CategoryUnknown.Message()
}
