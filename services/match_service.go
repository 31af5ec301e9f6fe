package services

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"saathi_server/models"
	"saathi_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	baseScore          = 50
	minScore           = 50
	maxScore           = 98
	religionWeight     = 20
	motherTongueWeight = 15
	cityWeight         = 10
	jitterSpread       = 5
)

// MatchService produces ordered match suggestions. Scoring is a pure
// heuristic computed per request; the jitter makes repeated calls for the
// same pair non-deterministic on purpose, so scores are never persisted or
// cached.
type MatchService struct {
	Dynamo   DB
	Profiles *ProfileService
}

// Score computes the match score of candidate against current: base 50, +20
// shared religion, +15 shared mother tongue, +10 shared city
// (case-insensitive, trimmed), plus a uniform jitter in [-5, +5], clamped to
// [50, 98]. Empty fields never count as a match.
func Score(current, candidate *models.MemberProfile) int {
	score := baseScore

	if current.Religion != "" && current.Religion == candidate.Religion {
		score += religionWeight
	}
	if current.MotherTongue != "" && current.MotherTongue == candidate.MotherTongue {
		score += motherTongueWeight
	}
	if sameCity(current.City, candidate.City) {
		score += cityWeight
	}

	score += rand.Intn(2*jitterSpread+1) - jitterSpread

	if score < minScore {
		score = minScore
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}

func sameCity(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// Rank scores every candidate against current and returns them best-first.
// The input slice is not modified.
func (ms *MatchService) Rank(ctx context.Context, current *models.MemberProfile, candidates []models.MemberProfile) []models.ScoredProfile {
	scored := make([]models.ScoredProfile, 0, len(candidates))
	for i := range candidates {
		scored = append(scored, models.ScoredProfile{
			PublicProfile: *ms.Profiles.Project(ctx, &candidates[i]),
			Score:         Score(current, &candidates[i]),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Suggestions builds the candidate pool for a member and returns up to
// poolSize ranked suggestions. The pool excludes the member themselves and
// profiles of the same gender.
func (ms *MatchService) Suggestions(ctx context.Context, userID string, poolSize int) ([]models.ScoredProfile, error) {
	current, err := ms.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if poolSize <= 0 || poolSize > 100 {
		poolSize = 20
	}

	var candidates []models.MemberProfile
	err = ms.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		candidateID := utils.ExtractString(item, "userId")
		if candidateID == "" || candidateID == userID {
			return false
		}
		if gender := utils.ExtractString(item, "gender"); gender != "" && gender == current.Gender {
			return false
		}
		return true
	}, &candidates)
	if err != nil {
		return nil, err
	}

	ranked := ms.Rank(ctx, current, candidates)
	if len(ranked) > poolSize {
		ranked = ranked[:poolSize]
	}
	return ranked, nil
}
