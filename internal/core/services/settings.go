package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyHighThreshold   = "align.high_threshold"
	keyReviewThreshold = "align.review_threshold"
	keyWindow          = "align.window"
	keyTableTolerance  = "table.tolerance"
	keyMetricsEnabled  = "metrics.enabled"
	keyMetricWeights   = "metrics.weights"
	keyWorkers         = "run.workers"
	keyTimeout         = "run.timeout"
	keyRiskKeywords    = "severity.risk_keywords"

	prefixWeight       = "metrics.weights."
	prefixMetricConfig = "metrics.config."
)

// settingsPrefixes cover every key the service owns.
var settingsPrefixes = []string{"align.", "table.", "metrics.", "run.", "severity."}

// SettingsService manages comparison settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves the current settings. Stored values override the defaults;
// the result is not validated, so a broken file surfaces at compare time.
func (s *SettingsService) Get() (*domain.CompareSettings, error) {
	settings, err := s.load()
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// load reads the stored settings. The settings are returned even when the
// stored timeout cannot be parsed, so that Set can repair it.
func (s *SettingsService) load() (*domain.CompareSettings, error) {
	settings := domain.DefaultCompareSettings()

	settings.HighThreshold = s.getFloat(keyHighThreshold, settings.HighThreshold)
	settings.ReviewThreshold = s.getFloat(keyReviewThreshold, settings.ReviewThreshold)
	settings.Window = s.getInt(keyWindow, settings.Window)
	settings.TableTolerance = s.getInt(keyTableTolerance, settings.TableTolerance)
	settings.Workers = s.getInt(keyWorkers, settings.Workers)

	if _, ok := s.configStore.Get(keyMetricsEnabled); ok {
		settings.Metrics = s.configStore.GetStringSlice(keyMetricsEnabled)
	}
	if _, ok := s.configStore.Get(keyRiskKeywords); ok {
		settings.RiskKeywords = s.configStore.GetStringSlice(keyRiskKeywords)
	}

	if keys := s.configStore.Keys(prefixWeight); len(keys) > 0 {
		settings.Weights = make(map[string]float64, len(keys))
		for _, k := range keys {
			settings.Weights[strings.TrimPrefix(k, prefixWeight)] = s.configStore.GetFloat(k)
		}
	}

	for _, k := range s.configStore.Keys(prefixMetricConfig) {
		name, param, ok := strings.Cut(strings.TrimPrefix(k, prefixMetricConfig), ".")
		if !ok || name == "" || param == "" {
			continue
		}
		if settings.MetricConfigs == nil {
			settings.MetricConfigs = make(map[string]map[string]any)
		}
		if settings.MetricConfigs[name] == nil {
			settings.MetricConfigs[name] = make(map[string]any)
		}
		v, _ := s.configStore.Get(k)
		settings.MetricConfigs[name][param] = v
	}

	if raw := s.configStore.GetString(keyTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return &settings, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, keyTimeout, err)
		}
		settings.Timeout = d
	}

	return &settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.CompareSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	for _, k := range s.configStore.Keys(prefixWeight) {
		if err := s.configStore.Delete(k); err != nil {
			return fmt.Errorf("clear %s: %w", k, err)
		}
	}

	values := map[string]any{
		keyHighThreshold:   settings.HighThreshold,
		keyReviewThreshold: settings.ReviewThreshold,
		keyWindow:          settings.Window,
		keyTableTolerance:  settings.TableTolerance,
		keyMetricsEnabled:  settings.Metrics,
		keyWorkers:         settings.Workers,
		keyTimeout:         settings.Timeout.String(),
		keyRiskKeywords:    settings.RiskKeywords,
	}
	for name, w := range settings.Weights {
		values[prefixWeight+name] = w
	}
	for name, cfg := range settings.MetricConfigs {
		for param, v := range cfg {
			values[prefixMetricConfig+name+"."+param] = v
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.configStore.Set(k, values[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

// Set updates one setting from its string form.
//
// Lists are comma separated. "metrics.weights" takes "name=weight" pairs and
// replaces every weight. Changing "metrics.enabled" shares the weight
// equally among the enabled metrics; set "metrics.weights" afterwards to
// change the shares. "metrics.config.<metric>.<param>" sets a metric option.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.load()
	if err != nil && key != keyTimeout {
		return err
	}
	err = nil
	value = strings.TrimSpace(value)

	switch key {
	case keyHighThreshold:
		settings.HighThreshold, err = parseFloat(key, value)
	case keyReviewThreshold:
		settings.ReviewThreshold, err = parseFloat(key, value)
	case keyWindow:
		settings.Window, err = parseInt(key, value)
	case keyTableTolerance:
		settings.TableTolerance, err = parseInt(key, value)
	case keyWorkers:
		settings.Workers, err = parseInt(key, value)
	case keyTimeout:
		settings.Timeout, err = time.ParseDuration(value)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, key, err)
		}
	case keyRiskKeywords:
		settings.RiskKeywords = splitList(value)
	case keyMetricsEnabled:
		settings.Metrics = splitList(value)
		settings.Weights = equalWeights(settings.Metrics)
	case keyMetricWeights:
		settings.Weights, err = parseWeights(value)
	default:
		if !strings.HasPrefix(key, prefixMetricConfig) {
			return fmt.Errorf("%w: unknown setting %q (available: %s)",
				domain.ErrInvalidConfig, key, strings.Join(s.Keys(), ", "))
		}
		name, param, ok := strings.Cut(strings.TrimPrefix(key, prefixMetricConfig), ".")
		if !ok || name == "" || param == "" {
			return fmt.Errorf("%w: %s: want metrics.config.<metric>.<param>", domain.ErrInvalidConfig, key)
		}
		if settings.MetricConfigs == nil {
			settings.MetricConfigs = make(map[string]map[string]any)
		}
		if settings.MetricConfigs[name] == nil {
			settings.MetricConfigs[name] = make(map[string]any)
		}
		settings.MetricConfigs[name][param] = parseScalar(value)
	}
	if err != nil {
		return err
	}

	return s.Save(settings)
}

// Reset removes every stored setting so the defaults apply.
func (s *SettingsService) Reset() error {
	for _, prefix := range settingsPrefixes {
		for _, k := range s.configStore.Keys(prefix) {
			if err := s.configStore.Delete(k); err != nil {
				return fmt.Errorf("reset %s: %w", k, err)
			}
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.CompareSettings {
	return domain.DefaultCompareSettings()
}

// Keys returns the configuration keys understood by Set.
func (s *SettingsService) Keys() []string {
	return []string{
		keyHighThreshold,
		keyReviewThreshold,
		keyWindow,
		keyTableTolerance,
		keyMetricsEnabled,
		keyMetricWeights,
		prefixMetricConfig + "<metric>.<param>",
		keyWorkers,
		keyTimeout,
		keyRiskKeywords,
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", domain.ErrInvalidConfig, key, value)
	}
	return f, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", domain.ErrInvalidConfig, key, value)
	}
	return n, nil
}

// parseWeights parses "meteor=0.5,bleu=0.5".
func parseWeights(value string) (map[string]float64, error) {
	weights := make(map[string]float64)
	for _, item := range splitList(value) {
		name, raw, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %s: %q is not name=weight", domain.ErrInvalidConfig, keyMetricWeights, item)
		}
		w, err := parseFloat(keyMetricWeights, strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		weights[strings.TrimSpace(name)] = w
	}
	return weights, nil
}

// parseScalar converts a metric option to an int, float or bool when it
// looks like one.
func parseScalar(value string) any {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func equalWeights(metrics []string) map[string]float64 {
	weights := make(map[string]float64, len(metrics))
	for _, name := range metrics {
		weights[name] = 1 / float64(len(metrics))
	}
	return weights
}
