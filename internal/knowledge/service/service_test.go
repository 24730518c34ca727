package service

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/biz"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeDocs struct {
	uploaded  []byte
	filename  string
	listReq   *types.ListDocumentsRequest
	deletedID string
	err       error
}

func (f *fakeDocs) UploadDocument(_ context.Context, filename string, data []byte) (*types.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.filename, f.uploaded = filename, data
	return &types.Document{ID: "doc-1", Filename: filename, Status: types.DocumentStatusPending}, nil
}

func (f *fakeDocs) GetDocument(_ context.Context, id string) (*types.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Document{ID: id, Status: types.DocumentStatusCompleted}, nil
}

func (f *fakeDocs) ListDocuments(_ context.Context, req *types.ListDocumentsRequest) (*types.ListDocumentsResponse, error) {
	f.listReq = req
	return &types.ListDocumentsResponse{Items: []*types.Document{}, Page: 1, Size: 20}, nil
}

func (f *fakeDocs) DeleteDocument(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

type fakeQA struct {
	req *biz.AskRequest
	err error
}

func (f *fakeQA) Ask(_ context.Context, req *biz.AskRequest) (*biz.Answer, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &biz.Answer{Answer: "42", AnswerHTML: "<p>42</p>\n", Sources: []*types.Passage{}}, nil
}

func newRouter(docs DocumentManager, qa QuestionAnswerer, maxUpload int64) *gin.Engine {
	ds := NewDocumentService(docs, maxUpload, logger.NewNop())
	cs := NewChatService(qa, biz.NewChunkUseCase(nil, false), logger.NewNop())

	r := gin.New()
	r.POST("/documents", ds.UploadDocument)
	r.GET("/documents", ds.ListDocuments)
	r.GET("/documents/:id", ds.GetDocument)
	r.DELETE("/documents/:id", ds.DeleteDocument)
	r.POST("/chat", cs.Chat)
	r.POST("/chunk", cs.PreviewChunks)
	return r
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadDocument(t *testing.T) {
	docs := &fakeDocs{}
	r := newRouter(docs, &fakeQA{}, 1024)

	w, env := do(t, r, multipartUpload(t, "file", "notes.txt", []byte("hello")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apperrors.Success, env.Code)
	assert.Equal(t, "notes.txt", docs.filename)
	assert.Equal(t, []byte("hello"), docs.uploaded)

	var doc types.Document
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, types.DocumentStatusPending, doc.Status)
}

func TestUploadDocument_BadRequests(t *testing.T) {
	r := newRouter(&fakeDocs{}, &fakeQA{}, 16)

	w, env := do(t, r, multipartUpload(t, "upload", "notes.txt", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ErrBadRequest, env.Code)

	big := bytes.Repeat([]byte("x"), 16+multipartOverhead+10)
	w, env = do(t, r, multipartUpload(t, "file", "big.txt", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, apperrors.ErrFileTooLarge, env.Code)
}

func TestUploadDocument_UseCaseError(t *testing.T) {
	r := newRouter(&fakeDocs{err: apperrors.New(apperrors.ErrInvalidFileType, ".exe")}, &fakeQA{}, 0)

	w, env := do(t, r, multipartUpload(t, "file", "a.exe", []byte("MZ")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ErrInvalidFileType, env.Code)
}

func TestListDocuments(t *testing.T) {
	docs := &fakeDocs{}
	r := newRouter(docs, &fakeQA{}, 0)

	w, _ := do(t, r, httptest.NewRequest(http.MethodGet, "/documents?page=2&size=5&status=failed", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, &types.ListDocumentsRequest{Status: types.DocumentStatusFailed, Page: 2, Size: 5}, docs.listReq)

	w, env := do(t, r, httptest.NewRequest(http.MethodGet, "/documents?size=1000", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ErrBadRequest, env.Code)
}

func TestGetAndDeleteDocument(t *testing.T) {
	docs := &fakeDocs{}
	r := newRouter(docs, &fakeQA{}, 0)

	w, env := do(t, r, httptest.NewRequest(http.MethodGet, "/documents/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"id":"abc"`)

	w, _ = do(t, r, httptest.NewRequest(http.MethodDelete, "/documents/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", docs.deletedID)

	docs.err = apperrors.New(apperrors.ErrDocumentNotFound)
	w, env = do(t, r, httptest.NewRequest(http.MethodGet, "/documents/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrDocumentNotFound, env.Code)
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChat(t *testing.T) {
	qa := &fakeQA{}
	r := newRouter(&fakeDocs{}, qa, 0)

	w, env := do(t, r, jsonRequest("/chat", `{"question":"why?","top_k":3,"history":[{"role":"user","content":"hi"}]}`))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, qa.req)
	assert.Equal(t, "why?", qa.req.Question)
	assert.Equal(t, 3, qa.req.TopK)
	require.Len(t, qa.req.History, 1)

	var ans biz.Answer
	require.NoError(t, json.Unmarshal(env.Data, &ans))
	assert.Equal(t, "42", ans.Answer)

	w, _ = do(t, r, jsonRequest("/chat", `{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	qa.err = apperrors.New(apperrors.ErrEmptyQuestion)
	w, env = do(t, r, jsonRequest("/chat", `{"question":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ErrEmptyQuestion, env.Code)
}

func TestPreviewChunks(t *testing.T) {
	r := newRouter(&fakeDocs{}, &fakeQA{}, 0)

	w, env := do(t, r, jsonRequest("/chunk", `{"pages":["Page one text.","Page two text."],"filename":"doc.pdf"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	var preview biz.ChunkPreview
	require.NoError(t, json.Unmarshal(env.Data, &preview))
	require.Equal(t, 2, preview.Total)
	assert.Equal(t, 2, preview.Chunks[1].Metadata.Page)

	w, env = do(t, r, jsonRequest("/chunk", `{"text":"x.","chunk_size":10,"chunk_overlap":10}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ErrInvalidChunkOptions, env.Code)
}
