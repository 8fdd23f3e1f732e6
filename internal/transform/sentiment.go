package transform

import (
	"fmt"
	"strings"
)

// Sentiment keyword rule table. Deliberately explicit and inspectable:
// the label is the strict-majority keyword category, ties are neutral.
// 關鍵字規則是暫時做法，之後若換分類模型，標籤語意要保持一致。
var (
	positiveKeywords = []string{
		"大漲", "利多", "買進", "看好", "成長",
		"創新高", "強勢", "樂觀", "突破", "上漲",
	}
	negativeKeywords = []string{
		"大跌", "利空", "賣出", "看壞", "衰退",
		"創新低", "弱勢", "悲觀", "跌破", "下跌",
	}
	neutralKeywords = []string{
		"持平", "觀望", "盤整", "震盪", "中性",
	}
)

// Sentiment labels.
const (
	LabelPositive = "利多"
	LabelNegative = "利空"
	LabelNeutral  = "中性"
)

// SentimentResult is the outcome of labeling one text.
type SentimentResult struct {
	Label         string `json:"label"`
	PositiveCount int    `json:"positive_count"`
	NegativeCount int    `json:"negative_count"`
	NeutralCount  int    `json:"neutral_count"`
	Completion    string `json:"completion"`
}

// LabelSentiment applies the keyword rule table to free text (a post
// plus its push comments, concatenated by the caller).
func LabelSentiment(text string) SentimentResult {
	result := SentimentResult{
		PositiveCount: countKeywords(text, positiveKeywords),
		NegativeCount: countKeywords(text, negativeKeywords),
		NeutralCount:  countKeywords(text, neutralKeywords),
	}

	switch {
	case result.PositiveCount > result.NegativeCount && result.PositiveCount > result.NeutralCount:
		result.Label = LabelPositive
		result.Completion = fmt.Sprintf("判定為利多：內文出現較多正面詞彙（%d 個）。", result.PositiveCount)
	case result.NegativeCount > result.PositiveCount && result.NegativeCount > result.NeutralCount:
		result.Label = LabelNegative
		result.Completion = fmt.Sprintf("判定為利空：內文出現較多負面詞彙（%d 個）。", result.NegativeCount)
	default:
		// Ties default to neutral
		result.Label = LabelNeutral
		result.Completion = "判定為中性：正負面詞彙相當或無明顯傾向。"
	}
	return result
}

// countKeywords sums occurrence counts over one keyword set
func countKeywords(text string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		total += strings.Count(text, kw)
	}
	return total
}

// GenerateSentimentExamples labels each text and emits training pairs.
// texts maps a stable ID (post ID) to the concatenated text.
func GenerateSentimentExamples(texts []LabeledText) []TrainingExample {
	examples := make([]TrainingExample, 0, len(texts))
	for _, t := range texts {
		result := LabelSentiment(t.Text)
		examples = append(examples, TrainingExample{
			Prompt:     fmt.Sprintf("請判斷以下討論的多空傾向：\n%s", t.Text),
			Completion: fmt.Sprintf("%s。%s", result.Label, result.Completion),
		})
	}
	return examples
}

// LabeledText is one unit of text to label, with its source ID.
type LabeledText struct {
	ID   string
	Text string
}
