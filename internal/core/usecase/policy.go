package usecase

import "github.com/mkarasev/doccat/internal/core/domain"

// decide applies the decision policy to a score list sorted descending.
// It abstains when the top score is zero (no overlap anywhere), below
// the confidence floor, or within the ambiguity gap of the runner-up;
// forcing a choice in those cases would feed noisy training signal back
// into the weights. The same rule runs for live suggestions and for
// evaluating historical predictions during adaptation.
func decide(scores []domain.CategoryScore, minConfidence, ambiguityGap float64) (domain.Outcome, *domain.CategoryScore) {
	if len(scores) == 0 {
		return domain.OutcomeAbstain, nil
	}

	top := scores[0]
	if top.Score == 0 || top.Score < minConfidence {
		return domain.OutcomeAbstain, nil
	}

	if len(scores) > 1 && top.Score-scores[1].Score < ambiguityGap {
		return domain.OutcomeAbstain, nil
	}

	assigned := top
	return domain.OutcomeAssigned, &assigned
}
