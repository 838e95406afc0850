package usecase

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/mkarasev/doccat/internal/core/domain"
)

func TestDecideAssignsClearWinner(t *testing.T) {
	scores := []domain.CategoryScore{
		{Category: domain.Category{ID: "c1"}, Score: 0.9},
		{Category: domain.Category{ID: "c2"}, Score: 0.4},
	}

	outcome, assigned := decide(scores, 0.3, 0.1)
	if outcome != domain.OutcomeAssigned {
		t.Fatalf("expected assignment, got %s", outcome)
	}
	if assigned == nil || assigned.Category.ID != "c1" {
		t.Fatalf("expected c1 assigned, got %+v", assigned)
	}
}

func TestDecideAbstainCases(t *testing.T) {
	cases := []struct {
		name   string
		scores []domain.CategoryScore
	}{
		{"empty list", nil},
		{"zero top score", []domain.CategoryScore{{Score: 0}}},
		{"below confidence floor", []domain.CategoryScore{{Score: 0.29}}},
		{"inside ambiguity gap", []domain.CategoryScore{{Score: 0.8}, {Score: 0.75}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, assigned := decide(tc.scores, 0.3, 0.1)
			if outcome != domain.OutcomeAbstain {
				t.Fatalf("expected abstain, got %s", outcome)
			}
			if assigned != nil {
				t.Fatalf("abstain must not carry an assignment, got %+v", assigned)
			}
		})
	}
}

func TestDecideSingleCandidateSkipsGapCheck(t *testing.T) {
	outcome, assigned := decide([]domain.CategoryScore{{Category: domain.Category{ID: "only"}, Score: 0.5}}, 0.3, 0.4)
	if outcome != domain.OutcomeAssigned || assigned == nil {
		t.Fatalf("single candidate above floor must be assigned, got %s %+v", outcome, assigned)
	}
}

func TestDecideNeverAssignsBelowFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		n := rng.Intn(6)
		scores := make([]domain.CategoryScore, n)
		for j := range scores {
			scores[j] = domain.CategoryScore{Score: rng.Float64()}
		}
		sort.SliceStable(scores, func(a, b int) bool { return scores[a].Score > scores[b].Score })

		minConfidence := rng.Float64()
		ambiguityGap := rng.Float64() * 0.3

		outcome, assigned := decide(scores, minConfidence, ambiguityGap)
		if outcome == domain.OutcomeAbstain {
			if assigned != nil {
				t.Fatalf("abstain carried assignment %+v", assigned)
			}
			continue
		}
		if assigned == nil {
			t.Fatalf("assignment outcome without a category")
		}
		if assigned.Score < minConfidence || assigned.Score == 0 {
			t.Fatalf("assigned %v below floor %v", assigned.Score, minConfidence)
		}
		if len(scores) > 1 && assigned.Score-scores[1].Score < ambiguityGap {
			t.Fatalf("assigned inside gap: top %v second %v gap %v", assigned.Score, scores[1].Score, ambiguityGap)
		}
	}
}
