package score

import (
	"context"
	"log/slog"
)

// Accumulator awards gamification points for created dongs
type Accumulator struct {
	repo        *Repository
	baseAward   int64
	mutualBonus int64
}

// NewAccumulator creates a new score accumulator
func NewAccumulator(repo *Repository, baseAward, mutualBonus int64) *Accumulator {
	return &Accumulator{repo: repo, baseAward: baseAward, mutualBonus: mutualBonus}
}

// Compute returns the bonus and total for one dong. The bonus only applies
// when the acting user paid part of it.
func Compute(base, bonusPerMutual int64, mutualCount int, actorPaid bool) (bonus, total int64) {
	if actorPaid && mutualCount > 0 {
		bonus = bonusPerMutual * int64(mutualCount)
	}
	return bonus, base + bonus
}

// Award stores the score of userID for dongID
func (a *Accumulator) Award(ctx context.Context, userID, dongID int64, mutualCount int, actorPaid bool) (*Score, error) {
	bonus, total := Compute(a.baseAward, a.mutualBonus, mutualCount, actorPaid)
	if !actorPaid {
		mutualCount = 0
	}

	s, err := a.repo.Create(ctx, &Score{
		UserID:      userID,
		DongID:      dongID,
		Base:        a.baseAward,
		Bonus:       bonus,
		MutualCount: mutualCount,
		Total:       total,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("score awarded", "user_id", userID, "dong_id", dongID, "total", total)
	return s, nil
}

// Summary returns userID's running total
func (a *Accumulator) Summary(ctx context.Context, userID int64) (*SummaryResponse, error) {
	return a.repo.Summary(ctx, userID)
}
