package store

import (
	"context"
	"fmt"

	"kharcha/internal/core"
)

// Preferences returns the user's settings.
func (s *Store) Preferences(ctx context.Context, username string) (core.Preferences, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return core.Preferences{}, err
	}
	return data.Preferences, nil
}

// UpdatePreferences patches individual settings, leaving the rest untouched.
func (s *Store) UpdatePreferences(ctx context.Context, username string, patch core.PreferencesPatch) (core.Preferences, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return core.Preferences{}, err
	}

	if patch.Currency != nil {
		if !patch.Currency.Valid() {
			return core.Preferences{}, fmt.Errorf("%w: unknown currency %q", core.ErrMalformedInput, *patch.Currency)
		}
		data.Preferences.Currency = *patch.Currency
	}
	if patch.Threshold != nil {
		if !core.FiniteAmount(*patch.Threshold) || *patch.Threshold < 0 {
			return core.Preferences{}, fmt.Errorf("%w: threshold must be a non-negative number", core.ErrMalformedInput)
		}
		data.Preferences.Threshold = *patch.Threshold
	}
	if patch.Theme != nil {
		data.Preferences.Theme = *patch.Theme
	}
	if patch.Locale != nil {
		data.Preferences.Locale = *patch.Locale
	}

	if err := s.Write(ctx, username, data); err != nil {
		return core.Preferences{}, err
	}
	return data.Preferences, nil
}
