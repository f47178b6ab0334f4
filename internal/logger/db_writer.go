package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "go-lms/internal/common/models"
	"go-lms/internal/config"
	"go-lms/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	IpAddress string
	UserID    string
	Caller    string // Function name
}

// LogSink persists a single log record.
type LogSink interface {
	InsertOne(ctx context.Context, document interface{}) error
}

type mongoSink struct {
	collection *mongo.Collection
}

func (s *mongoSink) InsertOne(ctx context.Context, document interface{}) error {
	_, err := s.collection.InsertOne(ctx, document)
	return err
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	sink     LogSink
	logChan  chan LogEntry
	appId    string
	minLevel zapcore.Level
	done     chan struct{}
	once     sync.Once
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	return newDBLogWriter(&mongoSink{collection: mongodb.DB.Collection("logs")}, cfg.AppId, zapcore.InfoLevel, 1000)
}

func newDBLogWriter(sink LogSink, appId string, minLevel zapcore.Level, buffer int) *DBLogWriter {
	writer := &DBLogWriter{
		sink:     sink,
		logChan:  make(chan LogEntry, buffer),
		appId:    appId,
		minLevel: minLevel,
		done:     make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	if entry.Level < w.minLevel {
		return
	}
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop the log rather than block the request path
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the buffered ones to be written.
func (w *DBLogWriter) Close() {
	w.once.Do(func() {
		close(w.logChan)
		<-w.done
	})
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		logRecord := common_models.Log{
			AppID:        w.appId,
			Message:      entry.Message,
			IpAddress:    entry.IpAddress,
			UserID:       entry.UserID,
			Caller:       entry.Caller,
			LogLevelId:   mapLevelToInt(entry.Level),
			CreatedOnUtc: time.Now().UTC(),
		}

		// Errors are ignored to keep the app running
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = w.sink.InsertOne(ctx, logRecord)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
