package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/repository"
	"go.uber.org/zap"
)

// LibraryService manages each user's archive of wording they liked.
type LibraryService struct {
	library repository.LibraryRepository
	logger  *zap.Logger
}

func NewLibraryService(library repository.LibraryRepository, logger *zap.Logger) *LibraryService {
	return &LibraryService{library: library, logger: logger}
}

func (s *LibraryService) Save(ctx context.Context, userID uuid.UUID, content string, msgType models.MessageType, originalSenderName *string) (*models.LibraryEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content must not be empty")
	}
	if !msgType.Valid() {
		return nil, apperr.Validation("message type must be thanks or honesty")
	}
	if originalSenderName != nil {
		name := strings.TrimSpace(*originalSenderName)
		originalSenderName = nil
		if name != "" {
			originalSenderName = &name
		}
	}

	entry, err := s.library.Create(ctx, userID, content, msgType, originalSenderName)
	if err != nil {
		return nil, fmt.Errorf("save library entry: %w", err)
	}
	return entry, nil
}

// List returns the user's entries newest first, or an empty list when the
// backend is unavailable.
func (s *LibraryService) List(ctx context.Context, userID uuid.UUID) ([]models.LibraryEntry, error) {
	entries, err := s.library.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrBackendUnavailable) {
			s.logger.Warn("library list degraded to empty", zap.Error(err))
			return []models.LibraryEntry{}, nil
		}
		return nil, fmt.Errorf("list library: %w", err)
	}
	if entries == nil {
		entries = []models.LibraryEntry{}
	}
	return entries, nil
}

// Remove deletes an entry. Users can only remove their own entries.
func (s *LibraryService) Remove(ctx context.Context, entryID, userID uuid.UUID) error {
	entry, err := s.library.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get library entry: %w", err)
	}
	if entry == nil {
		return apperr.NotFound("library entry not found")
	}
	if entry.UserID != userID {
		return apperr.Forbidden("cannot remove another user's library entry")
	}

	deleted, err := s.library.Delete(ctx, entryID)
	if err != nil {
		return fmt.Errorf("delete library entry: %w", err)
	}
	if !deleted {
		return apperr.NotFound("library entry not found")
	}
	return nil
}

func (s *LibraryService) Stats(ctx context.Context, userID uuid.UUID) (models.TypeCounts, error) {
	counts, err := s.library.CountByType(ctx, userID)
	if err != nil {
		return models.TypeCounts{}, fmt.Errorf("library stats: %w", err)
	}
	return counts, nil
}
