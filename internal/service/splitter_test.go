package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := splitText("hello world", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Nil(t, splitText("", 1000, 200))
	assert.Empty(t, splitText("   \n\n  ", 1000, 200))
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "Paragraph %d contains a few sentences of filler text for chunking. ", i)
	}

	chunks := splitText(sb.String(), 300, 50)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 300, "chunk %d exceeds limit", i)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSplitTextCoversAllContent(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 40; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Unique paragraph marker %03d with some surrounding words.", i))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := splitText(text, 200, 40)
	joined := strings.Join(chunks, "\n")
	for i := 0; i < 40; i++ {
		assert.Contains(t, joined, fmt.Sprintf("marker %03d", i))
	}
}

func TestSplitTextOverlapCarriesContext(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "word%03d ", i)
	}

	chunks := splitText(sb.String(), 100, 30)
	require.Greater(t, len(chunks), 1)
	// 相邻分块应共享一段尾部内容
	first := chunks[0]
	tail := first[len(first)-10:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplitTextTerminatesWithoutSeparators(t *testing.T) {
	text := strings.Repeat("a", 5000)
	chunks := splitText(text, 1000, 200)
	require.NotEmpty(t, chunks)
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	assert.GreaterOrEqual(t, total, 5000)
}
