package repository

import (
	"context"
	"fmt"

	"halawa/internal/domain"
	"halawa/internal/models"
)

type PreferencesRepository struct {
	store domain.KVStore
}

func NewPreferencesRepository(store domain.KVStore) *PreferencesRepository {
	return &PreferencesRepository{store: store}
}

// GetPreferences returns stored preferences with defaults for missing keys.
func (r *PreferencesRepository) GetPreferences(ctx context.Context) (models.Preferences, error) {
	prefs := models.Preferences{Language: models.DefaultLanguage, Theme: models.DefaultTheme}

	lang, ok, err := r.store.Get(ctx, models.KeyLanguage)
	if err != nil {
		return prefs, fmt.Errorf("get language: %w", err)
	}
	if ok && lang != "" {
		prefs.Language = lang
	}

	theme, ok, err := r.store.Get(ctx, models.KeyTheme)
	if err != nil {
		return prefs, fmt.Errorf("get theme: %w", err)
	}
	if ok && theme != "" {
		prefs.Theme = theme
	}
	return prefs, nil
}

func (r *PreferencesRepository) SetLanguage(ctx context.Context, lang string) error {
	if err := r.store.Set(ctx, models.KeyLanguage, lang); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) SetTheme(ctx context.Context, theme string) error {
	if err := r.store.Set(ctx, models.KeyTheme, theme); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}
