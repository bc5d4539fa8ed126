package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newThreadRouter(threads *fakeThreadService) *gin.Engine {
	r := gin.New()
	h := NewThreadHandler(threads)
	r.DELETE("/api/v1/thread/:id", h.Delete)
	return r
}

func TestDeleteThreadFlatResponse(t *testing.T) {
	threads := &fakeThreadService{threads: map[string]bool{"t-1": true}}
	r := newThreadRouter(threads)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/thread/t-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "thread deleted", "thread_id": "t-1"}`, w.Body.String())
}

func TestDeleteThreadNotFoundResponse(t *testing.T) {
	threads := &fakeThreadService{threads: map[string]bool{}}
	r := newThreadRouter(threads)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/thread/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "thread not found"}`, w.Body.String())
}
