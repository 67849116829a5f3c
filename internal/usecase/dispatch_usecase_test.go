package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/albesa-team/artguide-backend/internal/cfg"
	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueueRepo struct {
	mu        sync.Mutex
	queue     []*domain.RecognitionRequest
	responses map[string]*domain.RecognitionResponse
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{responses: make(map[string]*domain.RecognitionResponse)}
}

func (f *fakeQueueRepo) Enqueue(_ context.Context, req *domain.RecognitionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, req)
	return nil
}

func (f *fakeQueueRepo) Dequeue(_ context.Context) (*domain.RecognitionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, e.ErrQueueEmpty
	}
	req := f.queue[0]
	f.queue = f.queue[1:]
	return req, nil
}

func (f *fakeQueueRepo) SetResponse(_ context.Context, resp *domain.RecognitionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[resp.RequestID] = resp
	return nil
}

func (f *fakeQueueRepo) GetResponse(_ context.Context, requestID string) (*domain.RecognitionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp, ok := f.responses[requestID]
	if !ok {
		return nil, e.ErrResponseNotFound
	}
	return resp, nil
}

func testQueueCfg() *cfg.QueueCfg {
	return &cfg.QueueCfg{
		RequestQueue:   "artguide:requests",
		ResponsePrefix: "artguide:response:",
		ResponseTTL:    60 * time.Second,
		PollTimeout:    time.Second,
		PollInterval:   10 * time.Millisecond,
		AwaitTimeout:   200 * time.Millisecond,
	}
}

func TestSubmitEnqueuesRequest(t *testing.T) {
	repo := newFakeQueueRepo()
	uc := NewDispatchUC(repo, testQueueCfg(), nopLogger{})

	requestID, err := uc.Submit(context.Background(), NewSubmitReq([]byte("jpeg"), true))
	require.NoError(t, err)
	require.NotEmpty(t, requestID)

	req, err := repo.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, requestID, req.RequestID)
	assert.Equal(t, []byte("jpeg"), req.Image)
	assert.True(t, req.ShowContext)
	assert.False(t, req.SubmittedAt.IsZero())
}

func TestSubmitRejectsEmptyImage(t *testing.T) {
	uc := NewDispatchUC(newFakeQueueRepo(), testQueueCfg(), nopLogger{})

	_, err := uc.Submit(context.Background(), NewSubmitReq(nil, false))
	assert.ErrorIs(t, err, e.ErrNoImage)
}

func TestSubmitGeneratesUniqueIDs(t *testing.T) {
	uc := NewDispatchUC(newFakeQueueRepo(), testQueueCfg(), nopLogger{})

	first, err := uc.Submit(context.Background(), NewSubmitReq([]byte("a"), false))
	require.NoError(t, err)
	second, err := uc.Submit(context.Background(), NewSubmitReq([]byte("b"), false))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestAwaitReturnsResponse(t *testing.T) {
	repo := newFakeQueueRepo()
	uc := NewDispatchUC(repo, testQueueCfg(), nopLogger{})

	requestID, err := uc.Submit(context.Background(), NewSubmitReq([]byte("jpeg"), false))
	require.NoError(t, err)

	// Ответ появляется, пока продюсер опрашивает хранилище
	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = repo.SetResponse(context.Background(), &domain.RecognitionResponse{
			RequestID:  requestID,
			Status:     domain.StatusSuccess,
			Artist:     "Claude Monet",
			Confidence: 0.8,
		})
	}()

	resp, err := uc.Await(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, "Claude Monet", resp.Artist)
	assert.Equal(t, domain.StatusSuccess, resp.Status)
}

func TestAwaitTimesOut(t *testing.T) {
	uc := NewDispatchUC(newFakeQueueRepo(), testQueueCfg(), nopLogger{})

	_, err := uc.Await(context.Background(), "never-answered")
	assert.ErrorIs(t, err, e.ErrResponseTimeout)
}

func TestAwaitCancelledContext(t *testing.T) {
	uc := NewDispatchUC(newFakeQueueRepo(), testQueueCfg(), nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Await(ctx, "whatever")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchNotFound(t *testing.T) {
	uc := NewDispatchUC(newFakeQueueRepo(), testQueueCfg(), nopLogger{})

	_, err := uc.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, e.ErrResponseNotFound)
}

func TestFetchReturnsStoredResponse(t *testing.T) {
	repo := newFakeQueueRepo()
	require.NoError(t, repo.SetResponse(context.Background(), &domain.RecognitionResponse{
		RequestID: "req-7",
		Status:    domain.StatusError,
		Artist:    "Unknown",
	}))
	uc := NewDispatchUC(repo, testQueueCfg(), nopLogger{})

	resp, err := uc.Fetch(context.Background(), "req-7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, resp.Status)
}
