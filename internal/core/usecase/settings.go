package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/core/ports"
)

// SettingsCache loads the classification parameters once and serves them
// process-wide until an operator calls Reload. A missing or unparsable
// key falls back to its documented default with a logged warning and is
// never surfaced to classification callers.
type SettingsCache struct {
	repo ports.SettingsRepository
	log  *slog.Logger

	mu      sync.RWMutex
	loaded  bool
	current domain.ClassificationSettings
}

func NewSettingsCache(repo ports.SettingsRepository, log *slog.Logger) *SettingsCache {
	if log == nil {
		log = slog.Default()
	}
	return &SettingsCache{repo: repo, log: log}
}

func (c *SettingsCache) Current(ctx context.Context) (domain.ClassificationSettings, error) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.current, nil
	}
	c.mu.RUnlock()

	if err := c.Reload(ctx); err != nil {
		return domain.ClassificationSettings{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, nil
}

// Reload re-reads the settings table and swaps the cached snapshot.
func (c *SettingsCache) Reload(ctx context.Context) error {
	values, err := c.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load classification settings: %w", err)
	}

	next := c.parse(values)

	c.mu.Lock()
	c.current = next
	c.loaded = true
	c.mu.Unlock()
	return nil
}

func (c *SettingsCache) parse(values map[string]string) domain.ClassificationSettings {
	def := domain.DefaultClassificationSettings()
	return domain.ClassificationSettings{
		MinConfidence:          c.floatValue(values, domain.SettingMinConfidence, def.MinConfidence),
		AmbiguityGap:           c.floatValue(values, domain.SettingAmbiguityGap, def.AmbiguityGap),
		MinKeywordLength:       c.intValue(values, domain.SettingMinKeywordLength, def.MinKeywordLength),
		MinKeywordsRequired:    c.intValue(values, domain.SettingMinKeywordsRequired, def.MinKeywordsRequired),
		MaxKeywordsPerDocument: c.intValue(values, domain.SettingMaxKeywordsPerDocument, def.MaxKeywordsPerDocument),
		WeightMin:              c.floatValue(values, domain.SettingWeightMin, def.WeightMin),
		WeightMax:              c.floatValue(values, domain.SettingWeightMax, def.WeightMax),

		LearningRate:                   c.floatValue(values, domain.SettingLearningRate, def.LearningRate),
		PrimaryWeight:                  c.floatValue(values, domain.SettingPrimaryWeight, def.PrimaryWeight),
		SecondaryWeight:                c.floatValue(values, domain.SettingSecondaryWeight, def.SecondaryWeight),
		CorrectPredictionBonus:         c.floatValue(values, domain.SettingCorrectPredictionBonus, def.CorrectPredictionBonus),
		WrongPredictionBoost:           c.floatValue(values, domain.SettingWrongPredictionBoost, def.WrongPredictionBoost),
		LowConfidenceCorrectMultiplier: c.floatValue(values, domain.SettingLowConfidenceCorrectMultiplier, def.LowConfidenceCorrectMultiplier),
		HighConfidenceWrongMultiplier:  c.floatValue(values, domain.SettingHighConfidenceWrongMultiplier, def.HighConfidenceWrongMultiplier),
		MinWeightDifferential:          c.floatValue(values, domain.SettingMinWeightDifferential, def.MinWeightDifferential),
		LowConfidenceThreshold:         c.floatValue(values, domain.SettingLowConfidenceThreshold, def.LowConfidenceThreshold),
		HighConfidenceThreshold:        c.floatValue(values, domain.SettingHighConfidenceThreshold, def.HighConfidenceThreshold),

		KeywordStemmingEnabled:  c.boolValue(values, domain.SettingKeywordStemmingEnabled, def.KeywordStemmingEnabled),
		DefaultLanguage:         c.stringValue(values, domain.SettingDefaultLanguage, def.DefaultLanguage),
		ShortTextWordThreshold:  c.intValue(values, domain.SettingShortTextWordThreshold, def.ShortTextWordThreshold),
		DetectorConfidenceFloor: c.floatValue(values, domain.SettingDetectorConfidenceFloor, def.DetectorConfidenceFloor),
	}
}

func (c *SettingsCache) floatValue(values map[string]string, key string, fallback float64) float64 {
	raw, ok := values[key]
	if !ok {
		c.log.Warn("setting missing, using default", "key", key, "default", fallback)
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.log.Warn("setting unparsable, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return parsed
}

func (c *SettingsCache) intValue(values map[string]string, key string, fallback int) int {
	raw, ok := values[key]
	if !ok {
		c.log.Warn("setting missing, using default", "key", key, "default", fallback)
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		c.log.Warn("setting unparsable, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return parsed
}

func (c *SettingsCache) boolValue(values map[string]string, key string, fallback bool) bool {
	raw, ok := values[key]
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		c.log.Warn("setting unparsable, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return parsed
}

func (c *SettingsCache) stringValue(values map[string]string, key, fallback string) string {
	raw, ok := values[key]
	if !ok || raw == "" {
		return fallback
	}
	return raw
}
