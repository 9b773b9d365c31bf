package services

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/valpere/nebo/internal/interfaces"
	"github.com/valpere/nebo/internal/models"
)

// Persisted preference keys
const (
	KeyDarkMode             = "darkMode"
	KeyTemperatureUnit      = "temperatureUnit"
	KeyNotificationsEnabled = "notificationsEnabled"
)

const (
	darkModeEnabled  = "enabled"
	darkModeDisabled = "disabled"
)

// PreferenceService persists user settings. Writes are immediately durable.
type PreferenceService struct {
	store  interfaces.KeyValueStore
	logger *zerolog.Logger
}

func NewPreferenceService(store interfaces.KeyValueStore, logger *zerolog.Logger) *PreferenceService {
	return &PreferenceService{store: store, logger: logger}
}

// Unit returns the stored unit system, metric when unset or unreadable
func (s *PreferenceService) Unit(ctx context.Context) (models.UnitSystem, error) {
	raw, found, err := s.store.Get(ctx, KeyTemperatureUnit)
	if err != nil {
		return models.UnitMetric, storeUnavailable("read unit preference", err)
	}
	if !found {
		return models.UnitMetric, nil
	}

	unit, err := models.ParseUnitSystem(raw)
	if err != nil {
		s.logger.Warn().Str("value", raw).Msg("Ignoring invalid stored unit preference")
		return models.UnitMetric, nil
	}
	return unit, nil
}

func (s *PreferenceService) SetUnit(ctx context.Context, unit models.UnitSystem) error {
	if err := s.store.Set(ctx, KeyTemperatureUnit, string(unit)); err != nil {
		return storeUnavailable("write unit preference", err)
	}
	return nil
}

// NotificationsEnabled defaults to false
func (s *PreferenceService) NotificationsEnabled(ctx context.Context) (bool, error) {
	raw, found, err := s.store.Get(ctx, KeyNotificationsEnabled)
	if err != nil {
		return false, storeUnavailable("read notifications preference", err)
	}
	if !found {
		return false, nil
	}

	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn().Str("value", raw).Msg("Ignoring invalid stored notifications preference")
		return false, nil
	}
	return enabled, nil
}

func (s *PreferenceService) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	if err := s.store.Set(ctx, KeyNotificationsEnabled, strconv.FormatBool(enabled)); err != nil {
		return storeUnavailable("write notifications preference", err)
	}
	return nil
}

// Theme is persisted as darkMode "enabled"/"disabled"; light when unset
func (s *PreferenceService) Theme(ctx context.Context) (models.Theme, error) {
	raw, found, err := s.store.Get(ctx, KeyDarkMode)
	if err != nil {
		return models.ThemeLight, storeUnavailable("read theme preference", err)
	}
	if found && raw == darkModeEnabled {
		return models.ThemeDark, nil
	}
	return models.ThemeLight, nil
}

func (s *PreferenceService) SetTheme(ctx context.Context, theme models.Theme) error {
	value := darkModeDisabled
	if theme == models.ThemeDark {
		value = darkModeEnabled
	}
	if err := s.store.Set(ctx, KeyDarkMode, value); err != nil {
		return storeUnavailable("write theme preference", err)
	}
	return nil
}

// Preferences reads all settings; the first store failure aborts
func (s *PreferenceService) Preferences(ctx context.Context) (*models.Preferences, error) {
	unit, err := s.Unit(ctx)
	if err != nil {
		return nil, err
	}
	notifications, err := s.NotificationsEnabled(ctx)
	if err != nil {
		return nil, err
	}
	theme, err := s.Theme(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Preferences{
		Unit:                 unit,
		NotificationsEnabled: notifications,
		Theme:                theme,
	}, nil
}
