package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesechub/hubclient/logger"
	"github.com/codesechub/hubclient/requestid"
)

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	extract := logger.WithRequestID()

	t.Run("context without id", func(t *testing.T) {
		t.Parallel()
		_, ok := extract(t.Context())
		assert.False(t, ok)
	})

	t.Run("context with id", func(t *testing.T) {
		t.Parallel()
		ctx := requestid.WithContext(t.Context(), "req_123_abc")
		attr, ok := extract(ctx)
		require.True(t, ok)
		assert.Equal(t, "request_id", attr.Key)
		assert.Equal(t, "req_123_abc", attr.Value.String())
	})
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, logger.New())
	assert.NotNil(t, logger.NewDebug())
	assert.NotNil(t, logger.NewNope())

	// An empty DSN must fall back to plain stdout logging, not fail.
	assert.NotNil(t, logger.NewWithSentry(logger.SentryConfig{}))
}

func TestNopeDiscards(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	log.Info("nothing to see")
	log.Error("still nothing")
}
