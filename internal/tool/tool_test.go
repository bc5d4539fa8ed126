package tool

import (
	"context"
	"errors"
	"testing"

	"smart-chat-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

type fakeStore struct {
	hits         []model.SearchHit
	err          error
	lastThreadID string
	lastK        int
}

func (f *fakeStore) BulkUpsert(ctx context.Context, docs []model.ChunkDocument) error { return nil }

func (f *fakeStore) Search(ctx context.Context, vector []float32, threadID string, k int) ([]model.SearchHit, error) {
	f.lastThreadID = threadID
	f.lastK = k
	return f.hits, f.err
}

func (f *fakeStore) DeleteByThread(ctx context.Context, threadID string) (int, error) {
	return 0, nil
}

func TestExecuteUnknownTool(t *testing.T) {
	r := NewRegistry(&fakeEmbedder{}, &fakeStore{})
	result := r.Execute(context.Background(), Context{}, "time_machine", []byte(`{}`))
	assert.Equal(t, "Error: unknown tool 'time_machine'.", result)
}

func TestExecuteInvalidArguments(t *testing.T) {
	r := NewRegistry(&fakeEmbedder{}, &fakeStore{})
	result := r.Execute(context.Background(), Context{}, NameCalculator, []byte(`not json`))
	assert.Contains(t, result, "Error: invalid arguments for calculator")
}

func TestExecuteDispatchesCalculator(t *testing.T) {
	r := NewRegistry(&fakeEmbedder{}, &fakeStore{})
	result := r.Execute(context.Background(), Context{}, NameCalculator, []byte(`{"expression": "6 * 7"}`))
	assert.Equal(t, "6 * 7 = 42", result)
}

func TestDocumentSearchRequiresThreadID(t *testing.T) {
	r := NewRegistry(&fakeEmbedder{}, &fakeStore{})
	result := r.Execute(context.Background(), Context{}, NameDocumentSearch, []byte(`{"query": "anything"}`))
	assert.Equal(t, "Error: No thread ID found. Cannot search documents.", result)
}

func TestDocumentSearchNoHits(t *testing.T) {
	store := &fakeStore{}
	r := NewRegistry(&fakeEmbedder{vector: []float32{0.1, 0.2}}, store)

	result := r.Execute(context.Background(), Context{ThreadID: "t-1"}, NameDocumentSearch, []byte(`{"query": "missing"}`))

	assert.Equal(t, "No relevant information found in your uploaded documents.", result)
	assert.Equal(t, "t-1", store.lastThreadID)
	assert.Equal(t, docSearchTopK, store.lastK)
}

func TestDocumentSearchFormatsHits(t *testing.T) {
	store := &fakeStore{hits: []model.SearchHit{
		{TextContent: "Revenue grew 12% in Q3.", Source: "report.pdf", Page: 4, Score: 0.91},
		{TextContent: "Margins held steady.", Source: "", Page: 1, Score: 0.5},
	}}
	r := NewRegistry(&fakeEmbedder{vector: []float32{0.1}}, store)

	result := r.Execute(context.Background(), Context{ThreadID: "t-1"}, NameDocumentSearch, []byte(`{"query": "revenue"}`))

	require.Contains(t, result, "[Source: report.pdf, Page: 4, Relevance: 0.91]\nRevenue grew 12% in Q3.")
	// 缺失来源的命中标记为 Unknown
	assert.Contains(t, result, "[Source: Unknown, Page: 1, Relevance: 0.50]\nMargins held steady.")
	assert.Contains(t, result, "\n\n---\n\n")
}

func TestDocumentSearchEmbeddingError(t *testing.T) {
	r := NewRegistry(&fakeEmbedder{err: errors.New("quota exceeded")}, &fakeStore{})
	result := r.Execute(context.Background(), Context{ThreadID: "t-1"}, NameDocumentSearch, []byte(`{"query": "x"}`))
	assert.Contains(t, result, "Error searching documents:")
	assert.Contains(t, result, "quota exceeded")
}
