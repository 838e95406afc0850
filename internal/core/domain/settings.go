package domain

// Setting keys as stored in the settings table. Every numeric decision
// constant in the engine resolves through one of these; nothing is
// hardcoded at a call site.
const (
	SettingMinConfidence                   = "min_confidence"
	SettingAmbiguityGap                    = "ambiguity_gap"
	SettingMinKeywordLength                = "min_keyword_length"
	SettingMinKeywordsRequired             = "min_keywords_required"
	SettingMaxKeywordsPerDocument          = "max_keywords_per_document"
	SettingWeightMin                       = "weight_min"
	SettingWeightMax                       = "weight_max"
	SettingLearningRate                    = "ml_learning_rate"
	SettingPrimaryWeight                   = "ml_primary_weight"
	SettingSecondaryWeight                 = "ml_secondary_weight"
	SettingCorrectPredictionBonus          = "ml_correct_prediction_bonus"
	SettingWrongPredictionBoost            = "ml_wrong_prediction_boost"
	SettingLowConfidenceCorrectMultiplier  = "ml_low_confidence_correct_multiplier"
	SettingHighConfidenceWrongMultiplier   = "ml_high_confidence_wrong_multiplier"
	SettingMinWeightDifferential           = "ml_min_weight_differential"
	SettingLowConfidenceThreshold          = "ml_low_confidence_threshold"
	SettingHighConfidenceThreshold         = "ml_high_confidence_threshold"
	SettingKeywordStemmingEnabled          = "keyword_stemming_enabled"
	SettingDefaultLanguage                 = "default_language"
	SettingShortTextWordThreshold          = "short_text_word_threshold"
	SettingDetectorConfidenceFloor         = "detector_confidence_floor"
)

// ClassificationSettings is the cached, explicitly reloadable parameter
// set. It is immutable configuration from the perspective of a single
// classification call.
type ClassificationSettings struct {
	MinConfidence          float64
	AmbiguityGap           float64
	MinKeywordLength       int
	MinKeywordsRequired    int
	MaxKeywordsPerDocument int
	WeightMin              float64
	WeightMax              float64

	LearningRate                    float64
	PrimaryWeight                   float64
	SecondaryWeight                 float64
	CorrectPredictionBonus          float64
	WrongPredictionBoost            float64
	LowConfidenceCorrectMultiplier  float64
	HighConfidenceWrongMultiplier   float64
	MinWeightDifferential           float64
	LowConfidenceThreshold          float64
	HighConfidenceThreshold         float64

	KeywordStemmingEnabled  bool
	DefaultLanguage         string
	ShortTextWordThreshold  int
	DetectorConfidenceFloor float64
}

// DefaultClassificationSettings are the documented fallbacks used when
// a settings key is absent from the store.
func DefaultClassificationSettings() ClassificationSettings {
	return ClassificationSettings{
		MinConfidence:          0.3,
		AmbiguityGap:           0.1,
		MinKeywordLength:       3,
		MinKeywordsRequired:    3,
		MaxKeywordsPerDocument: 50,
		WeightMin:              0.1,
		WeightMax:              5.0,

		LearningRate:                   1.0,
		PrimaryWeight:                  1.0,
		SecondaryWeight:                0.05,
		CorrectPredictionBonus:         0.1,
		WrongPredictionBoost:           0.25,
		LowConfidenceCorrectMultiplier: 1.5,
		HighConfidenceWrongMultiplier:  2.0,
		MinWeightDifferential:          0.25,
		LowConfidenceThreshold:         0.5,
		HighConfidenceThreshold:        0.8,

		KeywordStemmingEnabled:  false,
		DefaultLanguage:         "en",
		ShortTextWordThreshold:  20,
		DetectorConfidenceFloor: 0.7,
	}
}
