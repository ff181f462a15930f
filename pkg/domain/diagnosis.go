package domain

// Diagnosis は構造化分類が返す臨床カテゴリです。
// RequiresFurtherReview はモデル出力には含まれず、信頼度ポリシーによる
// 差し替え専用の合成カテゴリです。
type Diagnosis string

const (
	DiagnosisNormal             Diagnosis = "Normal"
	DiagnosisBacterialPneumonia Diagnosis = "Bacterial Pneumonia"
	DiagnosisViralPneumonia     Diagnosis = "Viral Pneumonia"
	DiagnosisCovid19            Diagnosis = "COVID-19"
	DiagnosisTuberculosis       Diagnosis = "Tuberculosis"

	DiagnosisRequiresFurtherReview Diagnosis = "Requires Further Review"
)

// clinicalDiagnoses はモデルが返してよいカテゴリの一覧です（合成カテゴリは除く）。
var clinicalDiagnoses = []Diagnosis{
	DiagnosisNormal,
	DiagnosisBacterialPneumonia,
	DiagnosisViralPneumonia,
	DiagnosisCovid19,
	DiagnosisTuberculosis,
}

// IsClinical はモデル出力として有効な臨床カテゴリかどうかを返します。
func (d Diagnosis) IsClinical() bool {
	for _, c := range clinicalDiagnoses {
		if d == c {
			return true
		}
	}
	return false
}

// ClinicalDiagnoses は臨床カテゴリ一覧のコピーを返します。
// レスポンススキーマの enum 定義などに利用します。
func ClinicalDiagnoses() []Diagnosis {
	out := make([]Diagnosis, len(clinicalDiagnoses))
	copy(out, clinicalDiagnoses)
	return out
}

// ConfidenceUnparsed は Confidence のテキストが数値として解釈できなかった
// ことを示す ConfidenceValue の番兵値です。
const ConfidenceUnparsed = -1

// DiagnosisResult は 1 回のオーケストレーション呼び出しが生成する
// 不変の診断値です。JSON タグはゲートウェイのレスポンススキーマと一致します。
type DiagnosisResult struct {
	Diagnosis  Diagnosis `json:"diagnosis"`
	Confidence string    `json:"confidence"`
	// ConfidenceValue は Confidence を数値化した値。解釈できない場合は
	// ConfidenceUnparsed を保持する。原文の Confidence は常にそのまま残す。
	ConfidenceValue float64 `json:"-"`

	Explanation                      string `json:"explanation"`
	Explainability                   string `json:"explainability"`
	UncertaintyStatement             string `json:"uncertaintyStatement"`
	SegmentationUncertaintyStatement string `json:"segmentationUncertaintyStatement"`
	AnomalyReport                    string `json:"anomalyReport,omitempty"`
}
