package services

import (
	"context"
	"errors"
	"time"

	"github.com/openmat/rollbook-backend/internal/modules/journal"
	"github.com/openmat/rollbook-backend/internal/platform/apierr"
	"github.com/openmat/rollbook-backend/internal/platform/logger"
	"github.com/openmat/rollbook-backend/internal/types"
	"github.com/openmat/rollbook-backend/internal/vocab"
)

type ExtractionService interface {
	Extract(ctx context.Context, in types.JournalInput) (*types.ExtractionResult, error)
}

type extractionService struct {
	tables *vocab.Tables
	log    *logger.Logger
}

func NewExtractionService(tables *vocab.Tables, baseLog *logger.Logger) ExtractionService {
	return &extractionService{
		tables: tables,
		log:    baseLog.With("service", "ExtractionService"),
	}
}

func (s *extractionService) Extract(_ context.Context, in types.JournalInput) (*types.ExtractionResult, error) {
	result, err := journal.Run(in, s.tables, time.Now())
	if err != nil {
		if errors.Is(err, journal.ErrInvalidInput) {
			return nil, apierr.BadRequest("invalid_input", err)
		}
		s.log.Error("Extraction run failed", "error", err)
		return nil, apierr.Internal(err)
	}
	s.log.Debug("Extraction run complete",
		"suggestions", len(result.Suggestions),
		"flags", len(result.Flags),
	)
	return result, nil
}
