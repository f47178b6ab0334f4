package logger

import (
	"context"
	"sync"
	"testing"

	common_models "go-lms/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memorySink struct {
	mu   sync.Mutex
	docs []common_models.Log
}

func (s *memorySink) InsertOne(ctx context.Context, document interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, document.(common_models.Log))
	return nil
}

func TestDBCoreTeesEntriesToWriter(t *testing.T) {
	sink := &memorySink{}
	writer := newDBLogWriter(sink, "go-lms-test", zapcore.InfoLevel, 10)

	base, observed := observer.New(zapcore.DebugLevel)
	log := zap.New(NewDBCore(base, writer))

	log.Debug("debug entries stay on the console")
	log.Info("rule upserted", zap.String("user_id", "u-1"), zap.String("ip", "10.0.0.1"))
	log.With(zap.String("component", "sweeper")).Warn("attempt abandoned")
	writer.Close()

	assert.Equal(t, 3, observed.Len())

	require.Len(t, sink.docs, 2)
	assert.Equal(t, "rule upserted", sink.docs[0].Message)
	assert.Equal(t, "u-1", sink.docs[0].UserID)
	assert.Equal(t, "10.0.0.1", sink.docs[0].IpAddress)
	assert.Equal(t, 20, sink.docs[0].LogLevelId)
	assert.Equal(t, "go-lms-test", sink.docs[0].AppID)
	assert.Equal(t, 30, sink.docs[1].LogLevelId)
}

func TestAddLogDropsWhenBufferIsFull(t *testing.T) {
	w := &DBLogWriter{logChan: make(chan LogEntry, 1), minLevel: zapcore.InfoLevel}
	w.AddLog(LogEntry{Level: zapcore.InfoLevel, Message: "first"})
	w.AddLog(LogEntry{Level: zapcore.InfoLevel, Message: "dropped"})
	assert.Len(t, w.logChan, 1)
}
