package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarasev/doccat/internal/core/domain"
)

func TestSettingsCacheDefaultsWhenEmpty(t *testing.T) {
	cache := NewSettingsCache(&fakeSettingsRepo{}, discardLogger())

	st, err := cache.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	def := domain.DefaultClassificationSettings()
	if st != def {
		t.Fatalf("empty store must resolve to defaults:\n got %+v\nwant %+v", st, def)
	}
}

func TestSettingsCacheParsesOverrides(t *testing.T) {
	cache := NewSettingsCache(&fakeSettingsRepo{values: map[string]string{
		domain.SettingMinConfidence:          "0.45",
		domain.SettingMinKeywordLength:       "4",
		domain.SettingKeywordStemmingEnabled: "true",
		domain.SettingDefaultLanguage:        "de",
	}}, discardLogger())

	st, err := cache.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if st.MinConfidence != 0.45 {
		t.Fatalf("MinConfidence = %v, want 0.45", st.MinConfidence)
	}
	if st.MinKeywordLength != 4 {
		t.Fatalf("MinKeywordLength = %d, want 4", st.MinKeywordLength)
	}
	if !st.KeywordStemmingEnabled {
		t.Fatalf("KeywordStemmingEnabled must parse true")
	}
	if st.DefaultLanguage != "de" {
		t.Fatalf("DefaultLanguage = %q, want de", st.DefaultLanguage)
	}
	// Untouched keys keep their defaults.
	if st.AmbiguityGap != 0.1 {
		t.Fatalf("AmbiguityGap = %v, want default 0.1", st.AmbiguityGap)
	}
}

func TestSettingsCacheUnparsableFallsBack(t *testing.T) {
	cache := NewSettingsCache(&fakeSettingsRepo{values: map[string]string{
		domain.SettingMinConfidence:    "not-a-number",
		domain.SettingMinKeywordLength: "3.5",
	}}, discardLogger())

	st, err := cache.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if st.MinConfidence != 0.3 || st.MinKeywordLength != 3 {
		t.Fatalf("unparsable values must fall back, got %v / %d", st.MinConfidence, st.MinKeywordLength)
	}
}

func TestSettingsCacheLoadsOnce(t *testing.T) {
	repo := &fakeSettingsRepo{}
	cache := NewSettingsCache(repo, discardLogger())

	for i := 0; i < 5; i++ {
		if _, err := cache.Current(context.Background()); err != nil {
			t.Fatalf("Current() error = %v", err)
		}
	}
	if repo.loads != 1 {
		t.Fatalf("expected a single load, got %d", repo.loads)
	}
}

func TestSettingsCacheReloadSwapsSnapshot(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{domain.SettingMinConfidence: "0.3"}}
	cache := NewSettingsCache(repo, discardLogger())

	st, err := cache.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if st.MinConfidence != 0.3 {
		t.Fatalf("MinConfidence = %v, want 0.3", st.MinConfidence)
	}

	repo.values[domain.SettingMinConfidence] = "0.7"
	// The cache stays on its snapshot until an explicit reload.
	st, _ = cache.Current(context.Background())
	if st.MinConfidence != 0.3 {
		t.Fatalf("snapshot must not change without Reload, got %v", st.MinConfidence)
	}

	if err := cache.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	st, _ = cache.Current(context.Background())
	if st.MinConfidence != 0.7 {
		t.Fatalf("Reload must pick up 0.7, got %v", st.MinConfidence)
	}
}

func TestSettingsCacheLoadErrorSurfaces(t *testing.T) {
	boom := errors.New("settings table unavailable")
	cache := NewSettingsCache(&fakeSettingsRepo{err: boom}, discardLogger())

	if _, err := cache.Current(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}
