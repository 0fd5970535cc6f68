package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ConfigFields is a partial business config as read from storage. Keys use the
// JSON field names of BusinessConfig; nested objects are maps.
type ConfigFields map[string]any

// ErrConfigField marks stored config fields whose type does not match
// BusinessConfig.
var ErrConfigField = errors.New("malformed config field")

// MergeConfig overlays fields on base. Present fields win, nested objects are
// merged key by key and anything missing keeps its base value. The admin
// credential falls back to base and then to DefaultAdminPassword when empty.
//
// A top-level field that does not decode is skipped; the rest still merge
// and the returned error wraps ErrConfigField naming the skipped keys.
func MergeConfig(base BusinessConfig, fields ConfigFields) (BusinessConfig, error) {
	if len(fields) == 0 {
		return withCredential(base, base), nil
	}

	acc, err := toMap(base)
	if err != nil {
		return base, err
	}
	merged := base
	var skipped []string
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		trial, err := cloneMap(acc)
		if err != nil {
			return base, err
		}
		mergeInto(trial, map[string]any{k: fields[k]})
		cfg, err := fromMap(trial)
		if err != nil {
			skipped = append(skipped, k)
			continue
		}
		acc, merged = trial, cfg
	}
	merged = withCredential(merged, base)
	if len(skipped) > 0 {
		return merged, fmt.Errorf("%w: %s", ErrConfigField, strings.Join(skipped, ", "))
	}
	return merged, nil
}

func fromMap(m map[string]any) (BusinessConfig, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return BusinessConfig{}, fmt.Errorf("encode merged config: %w", err)
	}
	var cfg BusinessConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return BusinessConfig{}, fmt.Errorf("decode merged config: %w", err)
	}
	return cfg, nil
}

func cloneMap(m map[string]any) (map[string]any, error) {
	return toMap(m)
}

func withCredential(cfg, base BusinessConfig) BusinessConfig {
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = base.AdminPassword
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = DefaultAdminPassword
	}
	return cfg
}

// mergeInto copies src over dst, recursing where both sides hold an object.
// Nil values in src count as absent.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeInto(existing, sub)
				continue
			}
		}
		if sub, ok := v.(ConfigFields); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeInto(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// ToFields converts a config into its field map form.
func ToFields(cfg BusinessConfig) (ConfigFields, error) {
	m, err := toMap(cfg)
	if err != nil {
		return nil, err
	}
	return ConfigFields(m), nil
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return m, nil
}
