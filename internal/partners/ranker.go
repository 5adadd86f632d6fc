// Package partners ranks other users by skill compatibility with a base user.
package partners

import (
	"context"
	"errors"
	"sort"
	"strings"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/compatibility"
	"collabquest/internal/models"
	"collabquest/internal/userstore"
)

const (
	DefaultRankedLimit   = 20
	DefaultPartnersLimit = 50
)

// Query selects and trims a ranking.
type Query struct {
	Username   string
	Department string // case-insensitive; empty matches everyone
	Limit      int
	// WithVerified adds each candidate's verified skills to the result.
	WithVerified bool
}

type Ranker struct {
	store  userstore.Store
	scorer *compatibility.Scorer
}

func NewRanker(store userstore.Store, scorer *compatibility.Scorer) *Ranker {
	return &Ranker{store: store, scorer: scorer}
}

// Ranked is the plain compatibility listing.
func (r *Ranker) Ranked(ctx context.Context, username string, limit int) (*models.RankedPartners, error) {
	if limit <= 0 {
		limit = DefaultRankedLimit
	}
	return r.Rank(ctx, Query{Username: username, Limit: limit})
}

// Partners is the partner view: optional department filter and verified skills.
func (r *Ranker) Partners(ctx context.Context, username, department string, limit int) (*models.RankedPartners, error) {
	if limit <= 0 {
		limit = DefaultPartnersLimit
	}
	return r.Rank(ctx, Query{Username: username, Department: department, Limit: limit, WithVerified: true})
}

// Rank scores the base user against every other user, best first.
func (r *Ranker) Rank(ctx context.Context, q Query) (*models.RankedPartners, error) {
	base, err := r.store.GetUserByUsername(ctx, q.Username)
	if errors.Is(err, userstore.ErrUserNotFound) {
		return nil, apperrors.NewUserNotFoundError()
	}
	if err != nil {
		return nil, err
	}

	candidates, err := r.store.ListUsers(ctx, models.UserFilter{})
	if err != nil {
		return nil, err
	}

	baseSkills := skillsOf(base)
	results := make([]models.PartnerMatch, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == base.ID {
			continue
		}
		if q.Department != "" && !strings.EqualFold(c.Department, q.Department) {
			continue
		}

		res := r.scorer.Score(ctx, baseSkills, skillsOf(&c))
		match := models.PartnerMatch{
			UserID:     c.ID,
			Username:   c.Username,
			Name:       c.Name,
			Department: c.Department,
			Score:      res.Score,
			Reason:     res.Reason,
		}
		if q.WithVerified {
			match.VerifiedSkills = c.VerifiedSkills
		}
		results = append(results, match)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}

	return &models.RankedPartners{User: base.ID, Results: results}, nil
}

func skillsOf(u *models.User) interface{} {
	v, err := u.Skills.Value()
	if err != nil {
		return nil
	}
	return v
}
