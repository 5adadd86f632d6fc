// Package userstore reads collaborator profiles and records verified skills.
package userstore

import (
	"context"
	"errors"
	"time"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// Store is the user/skill backend.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	MarkSkillVerified(ctx context.Context, userID, skill string, record models.SkillVerification) error
	UnverifySkill(ctx context.Context, userID, skill string) error
}

// Resolve looks ident up as a username first and as a user id second.
func Resolve(ctx context.Context, store Store, ident string) (*models.User, error) {
	user, err := store.GetUserByUsername(ctx, ident)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	return store.GetUser(ctx, ident)
}

// ResolveAll resolves every identifier. When some are unknown the error is a
// USER_NOT_FOUND StandardError listing all of them.
func ResolveAll(ctx context.Context, store Store, idents ...string) ([]*models.User, error) {
	users := make([]*models.User, len(idents))
	var missing []string
	for i, ident := range idents {
		user, err := Resolve(ctx, store, ident)
		switch {
		case errors.Is(err, ErrUserNotFound):
			missing = append(missing, ident)
		case err != nil:
			return nil, err
		default:
			users[i] = user
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewUserNotFoundError(missing...)
	}
	return users, nil
}

// QuizVerifier records skills passed through a quiz.
type QuizVerifier struct {
	store Store
	now   func() time.Time
}

func NewQuizVerifier(store Store) *QuizVerifier {
	return &QuizVerifier{store: store, now: time.Now}
}

func (v *QuizVerifier) MarkSkillVerified(ctx context.Context, userID, skill string) error {
	return v.store.MarkSkillVerified(ctx, userID, skill, models.SkillVerification{
		Verified:   true,
		VerifiedAt: v.now().UTC().Format(time.RFC3339),
		Method:     models.VerificationMethodQuiz,
	})
}
