package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/pemistahl/lingua-go"

	"github.com/mkarasev/doccat/internal/core/ports"
)

const (
	defaultShortTextWordThreshold = 20
	defaultConfidenceFloor        = 0.7
	fallbackLanguage              = "en"
)

// Detector identifies the language of a text sample. Samples above the
// word threshold go through the fast trigram detector; short samples go
// through the n-gram model tuned for short strings, because frequency
// based detection is unreliable there. A low-confidence fast answer is
// re-checked on the short-text path, which wins. When neither detector
// produces an answer the configured default language is returned — that
// fallback is deliberate.
type Detector struct {
	shortText lingua.LanguageDetector
}

// New builds the short-text model for the languages the engine ships
// stop word sets for.
func New() *Detector {
	shortText := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.German,
			lingua.French,
			lingua.Spanish,
			lingua.Italian,
			lingua.Portuguese,
			lingua.Dutch,
			lingua.Russian,
		).
		Build()
	return &Detector{shortText: shortText}
}

func (d *Detector) Detect(text string, opts ports.DetectOptions) string {
	if opts.ShortTextWordThreshold <= 0 {
		opts.ShortTextWordThreshold = defaultShortTextWordThreshold
	}
	if opts.ConfidenceFloor <= 0 {
		opts.ConfidenceFloor = defaultConfidenceFloor
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = fallbackLanguage
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return opts.DefaultLanguage
	}

	if len(strings.Fields(text)) >= opts.ShortTextWordThreshold {
		info := whatlanggo.Detect(text)
		if code := info.Lang.Iso6391(); code != "" && info.Confidence >= opts.ConfidenceFloor {
			return code
		}
	}

	if lang, ok := d.shortText.DetectLanguageOf(text); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}

	// Last resort below the floor: an unreliable fast-path answer still
	// beats none at all.
	if code := whatlanggo.Detect(text).Lang.Iso6391(); code != "" {
		return code
	}
	return opts.DefaultLanguage
}
