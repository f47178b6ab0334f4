package audit

import (
	"context"
	"testing"

	common_models "go-lms/internal/common/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockAuditRepo struct {
	Err        error
	Created    []common_models.AuditLog
	LastLimit  int64
	LastOffset int64
}

func (m *MockAuditRepo) Create(ctx context.Context, log common_models.AuditLog) error {
	if m.Err != nil {
		return m.Err
	}
	m.Created = append(m.Created, log)
	return nil
}

func (m *MockAuditRepo) List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error) {
	m.LastLimit, m.LastOffset = limit, offset
	return m.Created, nil
}

func TestLogChangeUsesPrincipalAsActor(t *testing.T) {
	repo := &MockAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())
	userID := uuid.New()
	ctx := common_models.WithPrincipal(context.Background(), &common_models.Principal{UserID: userID, Username: "ada"})

	err := svc.LogChange(ctx, common_models.AuditActionUpdate, "access_rule", "r-1", map[string]common_models.Change{
		"can_edit": {Old: false, New: true},
	})
	require.NoError(t, err)

	require.Len(t, repo.Created, 1)
	assert.Equal(t, userID.String(), repo.Created[0].ActorID)
	assert.Equal(t, "ada", repo.Created[0].ActorName)
	assert.Equal(t, "access_rule", repo.Created[0].Entity)
}

func TestLogChangeWithoutPrincipalIsSystem(t *testing.T) {
	repo := &MockAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	require.NoError(t, svc.LogChange(context.Background(), common_models.AuditActionSeed, "access_rule", "", nil))
	assert.Equal(t, "system", repo.Created[0].ActorID)
}

func TestListLogsPaging(t *testing.T) {
	repo := &MockAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	_, err := svc.ListLogs(context.Background(), nil, 3, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(25), repo.LastLimit)
	assert.Equal(t, int64(50), repo.LastOffset)

	_, err = svc.ListLogs(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), repo.LastLimit)
	assert.Equal(t, int64(0), repo.LastOffset)
}

func TestLogChangeLogsFailedWrites(t *testing.T) {
	repo := &MockAuditRepo{Err: errors.New("no reachable servers")}
	core, observed := observer.New(zapcore.WarnLevel)
	svc := NewAuditService(repo, zap.New(core))

	err := svc.LogChange(context.Background(), common_models.AuditActionDelete, "lesson", "l-1", nil)
	assert.Error(t, err)

	require.Equal(t, 1, observed.Len())
	entry := observed.All()[0]
	assert.Equal(t, "Failed to write audit log", entry.Message)
	assert.Equal(t, "lesson", entry.ContextMap()["entity"])
	assert.Equal(t, "l-1", entry.ContextMap()["record_id"])
	assert.Equal(t, "no reachable servers", entry.ContextMap()["error"])
}
