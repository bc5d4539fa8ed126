package service

import "strings"

// 分块边界的优先级：段落 > 行 > 句子 > 词。
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// splitText 将长文本切分为带重叠的分块。
// 每块目标长度 chunkSize（按 rune 计），相邻块重叠 chunkOverlap，
// 切点尽量落在自然文本边界上。
func splitText(text string, chunkSize, chunkOverlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		return []string{text}
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			appendChunk(&chunks, runes[start:])
			break
		}

		cut := findBoundary(runes, start, end)
		appendChunk(&chunks, runes[start:cut])

		next := cut - chunkOverlap
		if next <= start {
			// 边界过于靠前时放弃重叠，保证前进
			next = cut
		}
		start = next
	}
	return chunks
}

// findBoundary 在 [start+chunkSize/2, end] 范围内从后向前找自然边界，
// 找不到则硬切在 end。
func findBoundary(runes []rune, start, end int) int {
	min := start + (end-start)/2
	window := string(runes[min:end])
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			sepRunes := len([]rune(window[:idx])) + len([]rune(sep))
			return min + sepRunes
		}
	}
	return end
}

func appendChunk(chunks *[]string, runes []rune) {
	chunk := strings.TrimSpace(string(runes))
	if chunk != "" {
		*chunks = append(*chunks, chunk)
	}
}
