package seeds

import "testing"

func TestLoadParsesEmbeddedSeeds(t *testing.T) {
	data, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, lang := range []string{"en", "de", "fr", "es"} {
		if len(data.StopWords[lang]) == 0 {
			t.Fatalf("missing stop words for %s", lang)
		}
	}
	if len(data.Categories) == 0 {
		t.Fatalf("no template categories")
	}

	keys := make(map[string]bool, len(data.Categories))
	for _, cat := range data.Categories {
		if cat.Key == "" || cat.Name == "" {
			t.Fatalf("template missing key or name: %+v", cat)
		}
		if keys[cat.Key] {
			t.Fatalf("duplicate template key %q", cat.Key)
		}
		keys[cat.Key] = true
		for lang, terms := range cat.Weights {
			for term, weight := range terms {
				if weight < 0.1 || weight > 5.0 {
					t.Fatalf("seed weight out of bounds: %s/%s/%s = %v", cat.Key, lang, term, weight)
				}
			}
		}
	}
	if !keys["banking"] {
		t.Fatalf("banking template missing")
	}
}

func TestBankingSeedsCarrySpecificTerms(t *testing.T) {
	data, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, cat := range data.Categories {
		if cat.Key != "banking" {
			continue
		}
		en := cat.Weights["en"]
		if en["statement"] == 0 || en["balance"] == 0 {
			t.Fatalf("banking english seeds incomplete: %v", en)
		}
		return
	}
	t.Fatalf("banking template not found")
}
