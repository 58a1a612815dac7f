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

// MotivationService manages the motivation board: one shared statement per
// user, readable by everyone, editable only by its author.
type MotivationService struct {
	motivations repository.MotivationRepository
	logger      *zap.Logger
}

func NewMotivationService(motivations repository.MotivationRepository, logger *zap.Logger) *MotivationService {
	return &MotivationService{motivations: motivations, logger: logger}
}

// Save sets the caller's motivation, replacing the previous one.
func (s *MotivationService) Save(ctx context.Context, userID uuid.UUID, content string) (*models.Motivation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content must not be empty")
	}

	m, err := s.motivations.Upsert(ctx, userID, content)
	if err != nil {
		return nil, fmt.Errorf("save motivation: %w", err)
	}
	return m, nil
}

// List returns the board most recently updated first, or an empty board
// when the backend is unavailable.
func (s *MotivationService) List(ctx context.Context) ([]models.Motivation, error) {
	list, err := s.motivations.List(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrBackendUnavailable) {
			s.logger.Warn("motivation list degraded to empty", zap.Error(err))
			return []models.Motivation{}, nil
		}
		return nil, fmt.Errorf("list motivations: %w", err)
	}
	if list == nil {
		list = []models.Motivation{}
	}
	return list, nil
}

// Mine returns the caller's motivation, or nil if they have not written one.
func (s *MotivationService) Mine(ctx context.Context, userID uuid.UUID) (*models.Motivation, error) {
	m, err := s.motivations.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get motivation: %w", err)
	}
	return m, nil
}

// Remove deletes a motivation. Users can only remove their own.
func (s *MotivationService) Remove(ctx context.Context, motivationID, userID uuid.UUID) error {
	m, err := s.motivations.GetByID(ctx, motivationID)
	if err != nil {
		return fmt.Errorf("get motivation: %w", err)
	}
	if m == nil {
		return apperr.NotFound("motivation not found")
	}
	if m.UserID != userID {
		return apperr.Forbidden("cannot remove another user's motivation")
	}
	return s.delete(ctx, motivationID)
}

// RemoveMine deletes the caller's motivation.
func (s *MotivationService) RemoveMine(ctx context.Context, userID uuid.UUID) error {
	m, err := s.Mine(ctx, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return apperr.NotFound("motivation not found")
	}
	return s.delete(ctx, m.ID)
}

func (s *MotivationService) delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.motivations.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete motivation: %w", err)
	}
	if !deleted {
		return apperr.NotFound("motivation not found")
	}
	return nil
}
