package driving

import "github.com/custodia-labs/parity-cli/internal/core/domain"

// SettingsService manages comparison settings.
type SettingsService interface {
	// Get retrieves the current settings, defaults filled in.
	Get() (*domain.CompareSettings, error)

	// Save validates and persists settings.
	Save(settings *domain.CompareSettings) error

	// Set updates one setting by its configuration key, e.g. "align.window".
	// The resulting settings must validate.
	Set(key, value string) error

	// Reset removes every stored setting so the defaults apply.
	Reset() error

	// GetDefaults returns default settings.
	GetDefaults() domain.CompareSettings

	// Keys returns the configuration keys understood by Set.
	Keys() []string
}
