// Package gateway はリモート推論サービス（Gemini）との境界を担当します。
// 1 枚の画像と指示文を受け取り、構造化テキストまたは生成画像を返します。
// リトライもタイムアウトも持たず、同一画像に対する並行呼び出しに対して安全です。
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/gemini-medscan-kit/pkg/config"
	"github.com/shouni/gemini-medscan-kit/pkg/domain"
	"github.com/shouni/gemini-medscan-kit/pkg/imgutil"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"
)

// GeminiGateway は推論リクエストの送信とレスポンス解析を保持するコンポーネントです。
type GeminiGateway struct {
	aiClient   gemini.GenerativeModel
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	cache      SourceCacher
	opts       Options
}

// NewGeminiGateway は依存関係を注入して GeminiGateway を初期化します。
func NewGeminiGateway(aiClient gemini.GenerativeModel, httpClient httpkit.ClientInterface, reader remoteio.InputReader, cache SourceCacher, opts Options) (*GeminiGateway, error) {
	// どの依存関係が不足しているか具体的に示す
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	// cache は nil を許容（キャッシュなし動作）
	if opts.Model == "" || opts.ImageModel == "" {
		return nil, fmt.Errorf("opts.Model and opts.ImageModel are required")
	}

	return &GeminiGateway{
		aiClient:   aiClient,
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		opts:       opts,
	}, nil
}

// OptionsFromConfig は環境設定からゲートウェイオプションを組み立てます。
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Model:          cfg.Model,
		ImageModel:     cfg.ImageModel,
		SourceCacheTTL: cfg.SourceCacheTTL,
	}
}

// GenerateStructured は画像と指示文を送信し、構造化出力（JSONテキスト）を返します。
// system にはロール定義とレスポンススキーマを渡します。
func (g *GeminiGateway) GenerateStructured(ctx context.Context, data []byte, mimeType, instruction, system string) (string, error) {
	parts, err := g.buildParts(data, mimeType, instruction)
	if err != nil {
		return "", err
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.opts.Model, parts, gemini.GenerateOptions{
		SystemPrompt: system,
	})
	if err != nil {
		return "", err
	}

	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

// GenerateImage は画像と指示文を送信し、生成された画像を返します。
// レスポンスに画像パーツが無い場合は ErrNoImagePayload を返します。
func (g *GeminiGateway) GenerateImage(ctx context.Context, data []byte, mimeType, instruction string) (*domain.ImageArtifact, error) {
	parts, err := g.buildParts(data, mimeType, instruction)
	if err != nil {
		return nil, err
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.opts.ImageModel, parts, gemini.GenerateOptions{})
	if err != nil {
		return nil, err
	}

	return parseImageArtifact(resp)
}

// buildParts は指示文テキストとソース画像の InlineData を組み立てます。
func (g *GeminiGateway) buildParts(data []byte, mimeType, instruction string) ([]*genai.Part, error) {
	finalData := data
	if UseImageCompression {
		finalData = imgutil.RecompressIfLarge(data, MaxInlineImageBytes, ImageCompressionQuality)
	}

	if mimeType == "" {
		mimeType = http.DetectContentType(finalData)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("画像ではないデータは送信できません (MIME: %s)", mimeType)
	}

	return []*genai.Part{
		{Text: instruction},
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: finalData}},
	}, nil
}

// firstText はレスポンス候補から最初のテキストパーツを取り出します。
func firstText(resp *gemini.Response) string {
	if resp == nil || resp.RawResponse == nil {
		return ""
	}
	for _, c := range resp.RawResponse.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// parseImageArtifact はレスポンスから画像パーツを抽出します。
func parseImageArtifact(resp *gemini.Response) (*domain.ImageArtifact, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("Geminiからの有効な応答がありませんでした: %w", ErrNoImagePayload)
	}

	// 最初の候補 (Candidate) のみを利用する
	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageArtifact{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}

	return nil, fmt.Errorf("画像データが見つかりませんでした: %w", ErrNoImagePayload)
}
