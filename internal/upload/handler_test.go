package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaski/registry/internal/ledger"
)

// memStorage is an in-memory blob store that hands out sequential keys.
type memStorage struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	uploadErr  error
	publicErr  error
	publicKeys []string
	deleted    []string
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}}
}

func (m *memStorage) Upload(_ context.Context, _ string, r io.Reader, _ int64, _ string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("blob-%d", len(m.blobs)+1)
	m.blobs[key] = data
	return key, nil
}

func (m *memStorage) MakePublic(_ context.Context, key string) error {
	m.mu.Lock()
	m.publicKeys = append(m.publicKeys, key)
	m.mu.Unlock()
	return m.publicErr
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	return nil
}

func (m *memStorage) PublicURL(key string) string {
	return "https://blobs.test/" + key
}

type memRecorder struct {
	entries []ledger.Entry
	err     error
}

func (m *memRecorder) Record(_ context.Context, e ledger.Entry) (*ledger.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.entries = append(m.entries, e)
	return &e, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, store *memStorage, rec Recorder, maxBytes int64) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()
	h, err := NewHandler(NewService(store, rec, discardLogger()), dir, maxBytes, discardLogger())
	require.NoError(t, err)
	return h, dir
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("nota", "afiche"))
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files left behind")
}

func TestUpload_ReturnsURLAndCleansUp(t *testing.T) {
	store := newMemStorage()
	rec := &memRecorder{}
	h, dir := newTestHandler(t, store, rec, 1024)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, FieldName, "afiche.png", []byte("png-bytes")))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "https://blobs.test/blob-1", body["url"])

	assert.Equal(t, []byte("png-bytes"), store.blobs["blob-1"])
	assert.Equal(t, []string{"blob-1"}, store.publicKeys)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "afiche.png", rec.entries[0].OriginalName)
	assert.Equal(t, int64(len("png-bytes")), rec.entries[0].SizeBytes)
	assertDirEmpty(t, dir)
}

func TestUpload_ExactlyAtLimit(t *testing.T) {
	h, dir := newTestHandler(t, newMemStorage(), nil, 16)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, FieldName, "a.jpg", bytes.Repeat([]byte("x"), 16)))

	assert.Equal(t, http.StatusOK, w.Code)
	assertDirEmpty(t, dir)
}

func TestUpload_TooLarge(t *testing.T) {
	store := newMemStorage()
	h, dir := newTestHandler(t, store, nil, 16)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, FieldName, "big.jpg", bytes.Repeat([]byte("x"), 17)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File too large")
	assert.Empty(t, store.blobs, "no blob may be created")
	assertDirEmpty(t, dir)
}

func TestUpload_TooLargeAtDefaultCeiling(t *testing.T) {
	store := newMemStorage()
	h, dir := newTestHandler(t, store, nil, 10*1024*1024)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, FieldName, "poster.jpg", bytes.Repeat([]byte("x"), 10*1024*1024+1)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"File too large (max 10MB)"}`, w.Body.String())
	assert.Empty(t, store.blobs)
	assertDirEmpty(t, dir)
}

func TestUpload_NoFile(t *testing.T) {
	h, dir := newTestHandler(t, newMemStorage(), nil, 1024)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, "", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No file uploaded"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, "foto", "a.png", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Upload(w, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"imagen":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assertDirEmpty(t, dir)
}

func TestUpload_StoreErrorSurfacesRawMessage(t *testing.T) {
	store := newMemStorage()
	store.uploadErr = errors.New("drive: quota exceeded")
	h, dir := newTestHandler(t, store, nil, 1024)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, FieldName, "a.png", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"drive: quota exceeded"}`, w.Body.String())
	assertDirEmpty(t, dir)
}

func TestUpload_SharingFailureIsIgnored(t *testing.T) {
	store := newMemStorage()
	store.publicErr = errors.New("permission already exists")
	h, _ := newTestHandler(t, store, &memRecorder{err: errors.New("db down")}, 1024)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, FieldName, "a.png", []byte("x")))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpload_IdenticalBytesGiveDistinctURLs(t *testing.T) {
	h, _ := newTestHandler(t, newMemStorage(), nil, 1024)

	urls := make([]string, 2)
	for i := range urls {
		w := httptest.NewRecorder()
		h.Upload(w, multipartRequest(t, FieldName, "same.png", []byte("same-bytes")))
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		urls[i] = body["url"]
	}

	assert.NotEqual(t, urls[0], urls[1])
}

func TestService_AbandonedUploadRemovesBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "afiche.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	store := newMemStorage()
	rec := &memRecorder{}
	svc := NewService(store, rec, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.Upload(ctx, File{Path: path, Name: "afiche.png", ContentType: "image/png", Size: 3})

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
	assert.Equal(t, []string{"blob-1"}, store.deleted)
	assert.Empty(t, store.blobs)
	assert.Empty(t, store.publicKeys)
	assert.Empty(t, rec.entries)
}
