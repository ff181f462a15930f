package analyzer

import "fmt"

// 各リクエストに添える指示文。文言は契約の対象外であり、
// リクエストの種類と数だけがオーケストレーションの契約に含まれる。

const classificationSystem = `あなたは胸部X線画像の診断支援モジュールです。
与えられた画像を分類し、指定されたスキーマに厳密に従う JSON のみを出力してください。
JSON 以外のテキストを出力してはいけません。

レスポンススキーマ (classification.schema.json):
` + classificationSchema

const classificationSchema = `{
  "type": "object",
  "required": [
    "diagnosis",
    "confidence",
    "explanation",
    "explainability",
    "uncertaintyStatement",
    "segmentationUncertaintyStatement"
  ],
  "properties": {
    "diagnosis": {
      "type": "string",
      "enum": ["Normal", "Bacterial Pneumonia", "Viral Pneumonia", "COVID-19", "Tuberculosis"]
    },
    "confidence": { "type": "string", "description": "パーセント表記のテキスト。例: \"87%\"" },
    "explanation": { "type": "string" },
    "explainability": { "type": "string" },
    "uncertaintyStatement": { "type": "string" },
    "segmentationUncertaintyStatement": { "type": "string" },
    "anomalyReport": { "type": "string" }
  }
}`

const instructionClassification = `この医用画像を分類し、診断・信頼度・根拠・説明可能性・不確実性に関する記述を
スキーマ通りの JSON で返してください。`

const instructionSegmentation = `この医用画像の病変領域を色分けしたセグメンテーションマップを生成してください。
元画像と同じ構図のまま、領域の重ね合わせ画像を返してください。`

const instructionSegmentationUncertainty = `セグメンテーション境界の不確実性を可視化したマップを生成してください。
不確実性が高い領域ほど強調された画像を返してください。`

const instructionHeatmap = `診断根拠として注目した領域を示すアテンションヒートマップを生成してください。`

// classificationInstruction は利用者フィードバックの有無に応じた分類指示文を返します。
func classificationInstruction(feedback string) string {
	if feedback == "" {
		return instructionClassification
	}
	return fmt.Sprintf("%s\n\n利用者からの追加の所見を考慮して再評価してください:\n%s",
		instructionClassification, feedback)
}

// heatmapInstruction は利用者フィードバックの有無に応じたヒートマップ指示文を返します。
func heatmapInstruction(feedback string) string {
	if feedback == "" {
		return instructionHeatmap
	}
	return fmt.Sprintf("%s\n\n利用者からの追加の所見を踏まえて注目領域を調整してください:\n%s",
		instructionHeatmap, feedback)
}
