package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"smart-chat-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, fileReader io.Reader, fileName string) ([]string, error) {
	return f.pages, f.err
}

type fakeEmbedding struct {
	calls int
}

func (f *fakeEmbedding) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

type recordingStore struct {
	batches     [][]model.ChunkDocument
	deleteCount int
	deleteErr   error
}

func (s *recordingStore) BulkUpsert(ctx context.Context, docs []model.ChunkDocument) error {
	batch := make([]model.ChunkDocument, len(docs))
	copy(batch, docs)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *recordingStore) Search(ctx context.Context, vector []float32, threadID string, k int) ([]model.SearchHit, error) {
	return nil, nil
}

func (s *recordingStore) DeleteByThread(ctx context.Context, threadID string) (int, error) {
	return s.deleteCount, s.deleteErr
}

type fakeObjectStore struct {
	objects map[string][]byte
	removed int
}

func (f *fakeObjectStore) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[objectName] = data
	return nil
}

func (f *fakeObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			names = append(names, strings.TrimPrefix(key, prefix))
		}
	}
	return names, nil
}

func (f *fakeObjectStore) RemoveAll(ctx context.Context, prefix string) (int, error) {
	return f.removed, nil
}

func TestIngestIndexesChunks(t *testing.T) {
	extractor := &fakeExtractor{pages: []string{
		"First page talks about revenue growth in the third quarter.",
		"Second page covers operating margins and cash flow.",
	}}
	embedder := &fakeEmbedding{}
	store := &recordingStore{}
	objects := &fakeObjectStore{}
	svc := NewDocumentService(extractor, embedder, store, objects)

	ok, msg := svc.Ingest(context.Background(), []byte("%PDF-"), "report.pdf", "t-1")
	require.True(t, ok)
	assert.Equal(t, "Successfully indexed 2 chunks from report.pdf", msg)

	require.Len(t, store.batches, 1)
	docs := store.batches[0]
	require.Len(t, docs, 2)
	// 页码从 1 开始，chunkIndex 全文件连续
	assert.Equal(t, 1, docs[0].Page)
	assert.Equal(t, 2, docs[1].Page)
	assert.Equal(t, 0, docs[0].ChunkIndex)
	assert.Equal(t, 1, docs[1].ChunkIndex)
	assert.Equal(t, "t-1", docs[0].ThreadID)
	assert.Equal(t, "report.pdf", docs[0].Source)
	assert.NotEmpty(t, docs[0].Vector)
	assert.Equal(t, 2, embedder.calls)

	// 原件留存在 thread 前缀下
	_, stored := objects.objects["t-1/report.pdf"]
	assert.True(t, stored)
}

func TestIngestBatchesLargeDocuments(t *testing.T) {
	// 构造足以产生 100+ 分块的文本
	paragraph := strings.Repeat("Filler sentence for the batching test. ", 20)
	var sb strings.Builder
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&sb, "%s\n\n", paragraph)
	}
	extractor := &fakeExtractor{pages: []string{sb.String()}}
	store := &recordingStore{}
	svc := NewDocumentService(extractor, &fakeEmbedding{}, store, &fakeObjectStore{})

	ok, _ := svc.Ingest(context.Background(), []byte("%PDF-"), "big.pdf", "t-1")
	require.True(t, ok)

	require.Greater(t, len(store.batches), 1, "expected more than one bulk batch")
	total := 0
	for i, batch := range store.batches {
		assert.LessOrEqual(t, len(batch), upsertBatchSize, "batch %d too large", i)
		total += len(batch)
	}
	assert.Greater(t, total, upsertBatchSize)
}

func TestIngestExtractorError(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("tika unreachable")}
	svc := NewDocumentService(extractor, &fakeEmbedding{}, &recordingStore{}, &fakeObjectStore{})

	ok, msg := svc.Ingest(context.Background(), []byte("%PDF-"), "bad.pdf", "t-1")
	assert.False(t, ok)
	assert.Contains(t, msg, "failed to extract text from bad.pdf")
}

func TestIngestEmptyDocument(t *testing.T) {
	extractor := &fakeExtractor{pages: nil}
	svc := NewDocumentService(extractor, &fakeEmbedding{}, &recordingStore{}, &fakeObjectStore{})

	ok, msg := svc.Ingest(context.Background(), []byte("%PDF-"), "empty.pdf", "t-1")
	assert.False(t, ok)
	assert.Contains(t, msg, "no text content extracted from empty.pdf")
}

func TestDeleteThreadDocuments(t *testing.T) {
	store := &recordingStore{deleteCount: 7}
	svc := NewDocumentService(&fakeExtractor{}, &fakeEmbedding{}, store, &fakeObjectStore{})

	ok, msg := svc.DeleteThreadDocuments(context.Background(), "t-1")
	assert.True(t, ok)
	assert.Equal(t, "Deleted 7 document chunks", msg)
}

func TestDeleteThreadDocumentsNothingToDelete(t *testing.T) {
	store := &recordingStore{deleteCount: 0}
	svc := NewDocumentService(&fakeExtractor{}, &fakeEmbedding{}, store, &fakeObjectStore{})

	ok, msg := svc.DeleteThreadDocuments(context.Background(), "t-1")
	assert.True(t, ok)
	assert.Equal(t, "No documents found for this thread", msg)
}

func TestDeleteThreadDocumentsIndexError(t *testing.T) {
	store := &recordingStore{deleteErr: errors.New("cluster red")}
	svc := NewDocumentService(&fakeExtractor{}, &fakeEmbedding{}, store, &fakeObjectStore{})

	ok, msg := svc.DeleteThreadDocuments(context.Background(), "t-1")
	assert.False(t, ok)
	assert.Contains(t, msg, "failed to delete documents")
}

func TestListDocuments(t *testing.T) {
	objects := &fakeObjectStore{objects: map[string][]byte{
		"t-1/report.pdf": []byte("a"),
		"t-1/notes.pdf":  []byte("b"),
		"t-2/other.pdf":  []byte("c"),
	}}
	svc := NewDocumentService(&fakeExtractor{}, &fakeEmbedding{}, &recordingStore{}, objects)

	names, err := svc.ListDocuments(context.Background(), "t-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"report.pdf", "notes.pdf"}, names)
}
