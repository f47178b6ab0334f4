package audit

import (
	"context"
	"time"

	common_models "go-lms/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Logger *zap.Logger
}

func NewAuditService(repo AuditRepository, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

// LogChange records who changed what. The actor comes from the Principal in ctx; calls
// without one (seeding, the attempt sweeper) are attributed to "system". Callers ignore the
// returned error, so a failed write is logged here.
func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	actorID, actorName := "system", "System"
	if p, ok := common_models.PrincipalFromContext(ctx); ok {
		actorID = p.UserID.String()
		actorName = p.Username
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Entity:    entity,
		RecordID:  recordID,
		ActorID:   actorID,
		ActorName: actorName,
		Changes:   changes,
		Timestamp: time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, log); err != nil {
		s.Logger.Warn("Failed to write audit log",
			zap.String("action", string(action)),
			zap.String("entity", entity),
			zap.String("record_id", recordID),
			zap.String("actor_id", actorID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 200 {
		limit = 200
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, filters, limit, offset)
}
