package service

import (
	"context"
	"errors"

	"halawa/internal/domain"
	"halawa/internal/models"
)

var (
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrInvalidTheme    = errors.New("unsupported theme")
)

type PreferencesService struct {
	repo domain.PreferencesRepository
}

func NewPreferencesService(repo domain.PreferencesRepository) *PreferencesService {
	return &PreferencesService{repo: repo}
}

func (s *PreferencesService) Get(ctx context.Context) (models.Preferences, error) {
	return s.repo.GetPreferences(ctx)
}

// Update stores the non-empty fields of prefs and returns the result.
func (s *PreferencesService) Update(ctx context.Context, prefs models.Preferences) (models.Preferences, error) {
	if prefs.Language != "" {
		switch prefs.Language {
		case models.LanguageEnglish, models.LanguageArabic:
		default:
			return models.Preferences{}, ErrInvalidLanguage
		}
	}
	if prefs.Theme != "" {
		switch prefs.Theme {
		case models.ThemeLight, models.ThemeDark:
		default:
			return models.Preferences{}, ErrInvalidTheme
		}
	}

	if prefs.Language != "" {
		if err := s.repo.SetLanguage(ctx, prefs.Language); err != nil {
			return models.Preferences{}, err
		}
	}
	if prefs.Theme != "" {
		if err := s.repo.SetTheme(ctx, prefs.Theme); err != nil {
			return models.Preferences{}, err
		}
	}
	return s.repo.GetPreferences(ctx)
}
