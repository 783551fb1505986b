package service

import (
	"context"

	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/rs/zerolog"
)

// SettingStore is the persistence surface for platform settings.
type SettingStore interface {
	GetAll(ctx context.Context) ([]model.Setting, error)
	GetPublic(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, key, value string) error
}

// SettingService handles platform settings.
type SettingService struct {
	settings SettingStore
	log      zerolog.Logger
}

// NewSettingService creates a new SettingService.
func NewSettingService(settings SettingStore, log zerolog.Logger) *SettingService {
	return &SettingService{
		settings: settings,
		log:      log.With().Str("component", "setting_service").Logger(),
	}
}

// GetAll returns every setting (dashboard view).
func (s *SettingService) GetAll(ctx context.Context) ([]model.Setting, error) {
	return s.settings.GetAll(ctx)
}

// GetPublic returns the unauthenticated subset (contact/payment info).
func (s *SettingService) GetPublic(ctx context.Context) ([]model.Setting, error) {
	return s.settings.GetPublic(ctx)
}

// Update bulk-writes setting values.
func (s *SettingService) Update(ctx context.Context, values map[string]string) error {
	for key, value := range values {
		if err := s.settings.Upsert(ctx, key, value); err != nil {
			return err
		}
		s.log.Debug().Str("key", key).Msg("Setting updated")
	}
	return nil
}
