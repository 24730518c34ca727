package milvus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost:19530", cfg.Address)
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"valid config", &Config{Address: "localhost:19530"}, false},
		{"empty address", &Config{}, true},
		{"negative dial timeout", &Config{Address: "x:1", DialTimeout: -time.Second}, true},
		{"negative request timeout", &Config{Address: "x:1", RequestTimeout: -time.Second}, true},
		{"negative max retries", &Config{Address: "x:1", MaxRetries: -1}, true},
		{"negative retry delay", &Config{Address: "x:1", RetryDelay: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := &Config{Address: "x:1", MaxRetries: 1}
	got := cfg.withDefaults()

	assert.Equal(t, DefaultDialTimeout, got.DialTimeout)
	assert.Equal(t, DefaultRequestTimeout, got.RequestTimeout)
	assert.Equal(t, DefaultRetryDelay, got.RetryDelay)
	assert.Equal(t, 1, got.MaxRetries)
	assert.Zero(t, cfg.DialTimeout, "original must stay untouched")
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError("Insert", nil, "c"))

	base := errors.New("boom")
	err := WrapError("Insert", base, "chunks")
	assert.EqualError(t, err, "milvus Insert [chunks]: boom")
	assert.ErrorIs(t, err, base)

	again := WrapError("Outer", err, "other")
	assert.Same(t, err, again)

	assert.EqualError(t, WrapError("Ping", base, ""), "milvus Ping: boom")
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(errors.New("request Timeout")))
	assert.False(t, IsTimeout(errors.New("bad request")))
	assert.False(t, IsTimeout(nil))

	assert.True(t, IsConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, IsConnectionError(errors.New("rpc error: code = Unavailable")))
	assert.False(t, IsConnectionError(errors.New("schema mismatch")))

	assert.True(t, IsNotFound(errors.New("collection not found[collection=x]")))
	assert.True(t, IsNotFound(errors.New("collection does not exist")))
	assert.False(t, IsNotFound(nil))

	assert.False(t, isRetryable(context.Canceled))
	assert.True(t, isRetryable(errors.New("connection reset by peer")))
}

func TestParseIndexType(t *testing.T) {
	tests := []struct {
		in      string
		want    IndexType
		wantErr bool
	}{
		{"", IndexTypeAuto, false},
		{"autoindex", IndexTypeAuto, false},
		{" hnsw ", IndexTypeHNSW, false},
		{"IVF_FLAT", IndexTypeIVFFlat, false},
		{"FLAT", IndexTypeFlat, false},
		{"DISKANN", "", true},
	}
	for _, tt := range tests {
		got, err := ParseIndexType(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidIndexType, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewIndex(t *testing.T) {
	for _, it := range []IndexType{IndexTypeAuto, IndexTypeFlat, IndexTypeIVFFlat, IndexTypeHNSW} {
		idx, err := NewIndex(it, MetricTypeCosine)
		require.NoError(t, err, it)
		assert.NotNil(t, idx)
	}

	_, err := NewIndex("SCANN", MetricTypeL2)
	assert.ErrorIs(t, err, ErrInvalidIndexType)
}

func TestToEntityMetricType(t *testing.T) {
	assert.Equal(t, entity.IP, toEntityMetricType("ip"))
	assert.Equal(t, entity.L2, toEntityMetricType(MetricTypeL2))
	assert.Equal(t, entity.COSINE, toEntityMetricType(""))
}

func newTestClient(retries int) *Client {
	return &Client{
		cfg:    &Config{Address: "x:1", MaxRetries: retries, RetryDelay: time.Millisecond},
		logger: logger.NewNop(),
	}
}

func TestExecWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries transient errors", func(t *testing.T) {
		c := newTestClient(3)
		calls := 0
		err := c.execWithRetry(ctx, "Insert", func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		c := newTestClient(3)
		calls := 0
		err := c.execWithRetry(ctx, "Insert", func(context.Context) error {
			calls++
			return errors.New("field dim mismatch")
		})
		assert.EqualError(t, err, "field dim mismatch")
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		c := newTestClient(2)
		calls := 0
		err := c.execWithRetry(ctx, "Search", func(context.Context) error {
			calls++
			return errors.New("i/o timeout")
		})
		assert.ErrorContains(t, err, "max retries exceeded")
		assert.Equal(t, 3, calls)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		c := newTestClient(5)
		c.cfg.RetryDelay = time.Hour
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := c.execWithRetry(cctx, "Search", func(context.Context) error {
			calls++
			cancel()
			return errors.New("unavailable")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestClosedClient(t *testing.T) {
	c := newTestClient(0)
	c.closed = true
	ctx := context.Background()

	_, err := c.HasCollection(ctx, "chunks")
	assert.ErrorIs(t, err, ErrClientClosed)
	_, err = c.Insert(ctx, "chunks")
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, c.Delete(ctx, "chunks", "id == 1"), ErrClientClosed)
	_, err = c.Search(ctx, &SearchRequest{Collection: "chunks"})
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, c.Close(ctx), ErrClientClosed)
}

func TestArgumentValidation(t *testing.T) {
	c := newTestClient(0)
	ctx := context.Background()

	_, err := c.Insert(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCollectionName)
	_, err = c.Insert(ctx, "chunks")
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.ErrorIs(t, c.Delete(ctx, "chunks", ""), ErrInvalidExpression)
	_, err = c.Search(ctx, &SearchRequest{Collection: "chunks", TopK: 3})
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.ErrorIs(t, c.CreateCollection(ctx, nil), ErrInvalidCollectionName)
}
