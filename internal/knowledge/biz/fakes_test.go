package biz

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/lk2023060901/doc-qa-backend/internal/ai"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/processor"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/storage"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

type fakeRepo struct {
	mu        sync.Mutex
	docs      map[string]*types.Document
	statuses  []types.DocumentStatus
	createErr error
	listReq   *types.ListDocumentsRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: map[string]*types.Document{}}
}

func (r *fakeRepo) Create(_ context.Context, doc *types.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.docs[doc.ID] = doc.Clone()
	r.statuses = append(r.statuses, doc.Status)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*types.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (r *fakeRepo) List(_ context.Context, req *types.ListDocumentsRequest) ([]*types.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listReq = req

	var all []*types.Document
	for _, d := range r.docs {
		if req.Status == "" || d.Status == req.Status {
			all = append(all, d.Clone())
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (req.Page - 1) * req.Size
	if start > len(all) {
		start = len(all)
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeRepo) Update(_ context.Context, doc *types.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return ErrDocumentNotFound
	}
	r.docs[doc.ID] = doc.Clone()
	r.statuses = append(r.statuses, doc.Status)
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status types.DocumentStatus, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrDocumentNotFound
	}
	doc.Status = status
	doc.ErrorMessage = msg
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *fakeRepo) get(id string) *types.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[id].Clone()
}

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string][]byte{}}
}

func (f *fakeFiles) Save(_ context.Context, documentID, filename string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	key := storage.ObjectKey(documentID, filename)
	f.objects[key] = data
	return key, nil
}

func (f *fakeFiles) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeFiles) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type fakeIndexer struct {
	mu       sync.Mutex
	indexed  map[string][]*types.DocumentChunk
	deleted  []string
	failed   int
	err      error
	passages []*types.Passage
	queries  []string
	topKs    []int
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[string][]*types.DocumentChunk{}}
}

func (x *fakeIndexer) Index(_ context.Context, documentID string, chunks []*types.DocumentChunk) (*storage.IndexResult, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return &storage.IndexResult{Failed: len(chunks)}, x.err
	}
	x.indexed[documentID] = chunks
	return &storage.IndexResult{Indexed: len(chunks) - x.failed, Failed: x.failed}, nil
}

func (x *fakeIndexer) DeleteDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.deleted = append(x.deleted, documentID)
	return x.err
}

func (x *fakeIndexer) Search(_ context.Context, query string, topK int) ([]*types.Passage, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.queries = append(x.queries, query)
	x.topKs = append(x.topKs, topK)
	if x.err != nil {
		return nil, x.err
	}
	return x.passages, nil
}

type fakeProcessor struct {
	result *processor.Result
	err    error
	seen   []byte
}

func (p *fakeProcessor) Process(_ context.Context, filename string, _ types.FileType, data []byte) (*processor.Result, error) {
	p.seen = data
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *fakeSummarizer) Summarize(context.Context, string) (*ai.SummaryResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ai.SummaryResult{Summary: s.summary, Model: "sum"}, nil
}

// syncRunner 在 Submit 内同步执行任务
type syncRunner struct {
	err error
}

func (r syncRunner) Submit(task func()) error {
	if r.err != nil {
		return r.err
	}
	task()
	return nil
}

type fakeGenerator struct {
	answer string
	err    error
	req    *ai.GenerateRequest
}

func (g *fakeGenerator) Generate(_ context.Context, req *ai.GenerateRequest) (*ai.GenerationResult, error) {
	g.req = req
	if g.err != nil {
		return nil, g.err
	}
	return &ai.GenerationResult{Answer: g.answer, Model: "chat"}, nil
}

func processedResult(n int) *processor.Result {
	chunks := make([]*types.DocumentChunk, n)
	for i := range chunks {
		chunks[i] = &types.DocumentChunk{
			ID:       "doc.txt-chunk-" + string(rune('0'+i)),
			Content:  "chunk content",
			Metadata: types.ChunkMetadata{Filename: "doc.txt", ChunkIndex: i, TotalChunks: n},
		}
	}
	return &processor.Result{Text: "full text", Chunks: chunks, CharCount: 9, TokenCount: 2 * n}
}
