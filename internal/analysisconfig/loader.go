package analysisconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const weightTolerance = 1e-6

// Load reads a YAML profile and validates it. KnownFields(true) makes a
// typo in the file a load error instead of a silently ignored setting.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, nil, fmt.Errorf("decode analysis config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// Validate checks the structural invariants of a configuration.
func Validate(cfg *Config) error {
	if cfg.Peer.MinPopulation < 2 {
		return fmt.Errorf("peer.min_population must be at least 2, got %d", cfg.Peer.MinPopulation)
	}
	if cfg.Trend.MinChangePct < 0 {
		return fmt.Errorf("trend.min_change_pct must be non-negative, got %f", cfg.Trend.MinChangePct)
	}
	if err := validateWeights("scoring.management.weights", cfg.Scoring.Management.Weights); err != nil {
		return err
	}
	if err := validateWeights("scoring.earnings.weights", cfg.Scoring.Earnings.Weights); err != nil {
		return err
	}
	if cfg.Valuation.CreatingMinSpreadPct < cfg.Valuation.DestroyingMaxSpreadPct {
		return fmt.Errorf("valuation verdict bands overlap: creating %f < destroying %f",
			cfg.Valuation.CreatingMinSpreadPct, cfg.Valuation.DestroyingMaxSpreadPct)
	}
	if cfg.Warning.DebtRatioCriticalPct < cfg.Warning.DebtRatioHighPct {
		return fmt.Errorf("warning.debt_ratio_critical_pct below debt_ratio_high_pct")
	}
	return nil
}

func validateWeights(field string, weights map[string]float64) error {
	if len(weights) != 4 {
		return fmt.Errorf("%s: want exactly 4 weights, got %d", field, len(weights))
	}
	sum := 0.0
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s: weight %q is negative", field, name)
		}
		sum += w
	}
	if sum < 1-weightTolerance || sum > 1+weightTolerance {
		return fmt.Errorf("%s: weights sum to %.6f, want 1.0", field, sum)
	}
	return nil
}

// Hash produces a deterministic SHA-256 over the canonical JSON form,
// used to stamp reports with the exact configuration that produced them.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
