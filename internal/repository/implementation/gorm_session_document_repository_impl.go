package implementation

import (
	"context"
	"errors"
	"strings"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/mapper"
	"interview-practice-be/internal/model"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionDocumentRepository keeps documents in postgres, one row per
// session, and serializes writers with a row lock.
type GormSessionDocumentRepository struct {
	db     *gorm.DB
	mapper *mapper.SessionDocumentMapper
	logger logger.ILogger
}

func NewGormSessionDocumentRepository(db *gorm.DB, log logger.ILogger) (*GormSessionDocumentRepository, error) {
	if err := db.AutoMigrate(&model.SessionDocument{}); err != nil {
		return nil, err
	}
	return &GormSessionDocumentRepository{
		db:     db,
		mapper: mapper.NewSessionDocumentMapper(),
		logger: log,
	}, nil
}

var _ contract.SessionDocumentRepository = (*GormSessionDocumentRepository)(nil)

func (r *GormSessionDocumentRepository) Mutate(ctx context.Context, sessionId string, fn contract.MutateFunc) (*entity.SessionDocument, error) {
	var result *entity.SessionDocument

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Make sure a row exists so that FOR UPDATE has something to lock,
		// even for the very first submission of a session.
		placeholder := model.SessionDocument{
			SessionId:   sessionId,
			Submissions: datatypes.JSON("{}"),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error; err != nil {
			return err
		}

		var m model.SessionDocument
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionId).
			First(&m).Error; err != nil {
			return err
		}

		current, err := r.mapper.ToEntity(&m)
		if err != nil {
			r.logger.Warn("Ledger", "Session document corrupt, starting fresh", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			current = nil
		}
		if isPlaceholder(&m) {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		updated, err := r.mapper.ToModel(next)
		if err != nil {
			return err
		}
		if err := tx.Save(updated).Error; err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GormSessionDocumentRepository) FindBySessionId(ctx context.Context, sessionId string) (*entity.SessionDocument, error) {
	var m model.SessionDocument
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if isPlaceholder(&m) {
		return nil, nil
	}
	return r.mapper.ToEntity(&m)
}

func (r *GormSessionDocumentRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isPlaceholder reports whether m is the bare row Mutate inserts before
// locking, as opposed to a stored document.
func isPlaceholder(m *model.SessionDocument) bool {
	return m.StartTime == "" && m.LastUpdated == "" && len(m.Extra) == 0 &&
		strings.TrimSpace(string(m.Submissions)) == "{}"
}
