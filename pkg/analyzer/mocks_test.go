package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/shouni/gemini-medscan-kit/pkg/domain"
)

// --- Mocks ---

const validDiagnosisJSON = `{
  "diagnosis": "Bacterial Pneumonia",
  "confidence": "91%",
  "explanation": "右下肺野に浸潤影を認める。",
  "explainability": "浸潤影の濃度と分布が細菌性肺炎に典型的。",
  "uncertaintyStatement": "左肺野の評価は撮影条件により限定的。",
  "segmentationUncertaintyStatement": "病変境界の一部が不明瞭。"
}`

// mockGateway は発行されたリクエストを記録する InferenceGateway の実装です。
// delay を設定すると、同時実行数の観測に使えます。
type mockGateway struct {
	mu              sync.Mutex
	structuredCalls []string
	imageCalls      []string
	inFlight        int
	maxInFlight     int

	delay          time.Duration
	structuredFunc func(instruction string) (string, error)
	imageFunc      func(instruction string) (*domain.ImageArtifact, error)
}

func (m *mockGateway) enter() {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
}

func (m *mockGateway) leave() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

func (m *mockGateway) GenerateStructured(ctx context.Context, data []byte, mimeType, instruction, system string) (string, error) {
	m.enter()
	defer m.leave()

	m.mu.Lock()
	m.structuredCalls = append(m.structuredCalls, instruction)
	m.mu.Unlock()

	if m.structuredFunc != nil {
		return m.structuredFunc(instruction)
	}
	return validDiagnosisJSON, nil
}

func (m *mockGateway) GenerateImage(ctx context.Context, data []byte, mimeType, instruction string) (*domain.ImageArtifact, error) {
	m.enter()
	defer m.leave()

	m.mu.Lock()
	m.imageCalls = append(m.imageCalls, instruction)
	m.mu.Unlock()

	if m.imageFunc != nil {
		return m.imageFunc(instruction)
	}
	return &domain.ImageArtifact{Data: []byte("generated"), MimeType: "image/png"}, nil
}

func (m *mockGateway) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.structuredCalls) + len(m.imageCalls)
}
