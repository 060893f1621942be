package metrics

import (
	"fmt"

	"github.com/custodia-labs/parity-cli/internal/core/ports/driven"
	"github.com/custodia-labs/parity-cli/internal/metrics/bleu"
	"github.com/custodia-labs/parity-cli/internal/metrics/cosine"
	"github.com/custodia-labs/parity-cli/internal/metrics/meteor"
)

// RegisterDefaults registers all built-in metrics with the registry.
// Call this during application initialisation to enable standard metrics.
func RegisterDefaults(r *Registry) {
	r.Register(meteor.Name, buildMeteor)
	r.Register(bleu.Name, buildBLEU)
	r.Register(cosine.Name, buildCosine)
}

// buildMeteor creates a METEOR-style metric from generic config.
// Supported config keys:
//   - alpha (float): Recall weight of the harmonic mean (default: 0.9)
//   - stem_prefix (int): Prefix length for stem matches, 0 disables (default: 5)
func buildMeteor(cfg map[string]any) (driven.Metric, error) {
	var opts []meteor.Option

	if cfg != nil {
		if alpha, ok := getFloatFromConfig(cfg, "alpha"); ok {
			if alpha < 0 || alpha > 1 {
				return nil, fmt.Errorf("alpha must be within [0,1], got %v", alpha)
			}
			opts = append(opts, meteor.WithAlpha(alpha))
		}
		if _, ok := cfg["stem_prefix"]; ok {
			opts = append(opts, meteor.WithStemPrefix(getIntFromConfig(cfg, "stem_prefix")))
		}
	}

	return meteor.New(opts...), nil
}

// buildBLEU creates a BLEU metric from generic config.
// Supported config keys:
//   - max_n (int): Highest n-gram order (default: 4)
func buildBLEU(cfg map[string]any) (driven.Metric, error) {
	var opts []bleu.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "max_n"); n != 0 {
			if n < 1 {
				return nil, fmt.Errorf("max_n must be positive, got %d", n)
			}
			opts = append(opts, bleu.WithMaxN(n))
		}
	}

	return bleu.New(opts...), nil
}

// buildCosine creates the token cosine metric. It takes no config.
func buildCosine(_ map[string]any) (driven.Metric, error) {
	return cosine.New(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig extracts a float from generic config map.
func getFloatFromConfig(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
