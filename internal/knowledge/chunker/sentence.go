package chunker

import (
	"regexp"
	"strings"
)

// 连续的句末标点视为一个分隔符
var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// SplitSentences 按 . ! ? 切分句子，去除首尾空白并丢弃空句。
//
// 不识别缩写、小数和引号内的标点，"Dr. Smith" 会被拆成两句。
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	parts := sentenceTerminators.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
