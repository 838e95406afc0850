// Package seeds ships the default stop word sets and system template
// categories with their seed keyword weights. The data is loaded once
// at bootstrap and inserted idempotently.
package seeds

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords.yaml
var stopwordsRaw []byte

//go:embed categories.yaml
var categoriesRaw []byte

// Category is one system template: reference key, display name and
// per-language seed keyword weights.
type Category struct {
	Key     string                        `yaml:"key"`
	Name    string                        `yaml:"name"`
	Weights map[string]map[string]float64 `yaml:"weights"`
}

type Data struct {
	StopWords  map[string][]string `yaml:"stopwords"`
	Categories []Category          `yaml:"categories"`
}

func Load() (Data, error) {
	var data Data
	var stops struct {
		StopWords map[string][]string `yaml:"stopwords"`
	}
	if err := yaml.Unmarshal(stopwordsRaw, &stops); err != nil {
		return Data{}, fmt.Errorf("parse stopword seeds: %w", err)
	}
	data.StopWords = stops.StopWords

	var cats struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(categoriesRaw, &cats); err != nil {
		return Data{}, fmt.Errorf("parse category seeds: %w", err)
	}
	data.Categories = cats.Categories
	return data, nil
}
