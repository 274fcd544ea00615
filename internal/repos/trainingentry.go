package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmat/rollbook-backend/internal/platform/logger"
	"github.com/openmat/rollbook-backend/internal/types"
)

type TrainingEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.TrainingEntry) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TrainingEntry, error)
	ByContentHash(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, hash string) ([]types.TrainingEntry, error)
	RecentByAthlete(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, limit int) ([]types.TrainingEntry, error)
}

type trainingEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingEntryRepo(db *gorm.DB, baseLog *logger.Logger) TrainingEntryRepo {
	return &trainingEntryRepo{
		db:  db,
		log: baseLog.With("repo", "TrainingEntryRepo"),
	}
}

func (r *trainingEntryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.TrainingEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		r.log.Error("Failed to create training entry", "athlete_id", entry.AthleteID.String(), "error", err)
		return err
	}
	return nil
}

func (r *trainingEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TrainingEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.TrainingEntry
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *trainingEntryRepo) ByContentHash(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, hash string) ([]types.TrainingEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if athleteID == uuid.Nil || hash == "" {
		return nil, nil
	}
	var rows []types.TrainingEntry
	err := transaction.WithContext(ctx).
		Where("athlete_id = ? AND content_hash = ?", athleteID, hash).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *trainingEntryRepo) RecentByAthlete(ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, limit int) ([]types.TrainingEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if athleteID == uuid.Nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []types.TrainingEntry
	err := transaction.WithContext(ctx).
		Where("athlete_id = ?", athleteID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
