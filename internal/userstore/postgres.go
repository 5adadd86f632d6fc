package userstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/common/logger"
	"collabquest/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	userColumns     = `id, username, name, department, college, year, email, skills, verified_skills`
	userCachePrefix = "user:record:"
)

// PostgresStore keeps users in a "users" table with jsonb skill columns.
// Single-user reads by id are cached in redis when a cache is configured.
type PostgresStore struct {
	db       *sql.DB
	cache    redis.Cmdable
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewPostgresStore(db *sql.DB, cache redis.Cmdable, cacheTTL time.Duration, log logger.Logger) *PostgresStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresStore{db: db, cache: cache, cacheTTL: cacheTTL, logger: log}
}

func userCacheKey(id string) string {
	return userCachePrefix + id
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if user := s.cached(ctx, id); user != nil {
		return user, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, s.queryError("user_by_id", err)
	}

	s.store(ctx, user)
	return user, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, s.queryError("user_by_username", err)
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += fmt.Sprintf(` WHERE LOWER(department) = LOWER($%d)`, len(args))
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_users", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_users", err)
	}
	return users, nil
}

func (s *PostgresStore) MarkSkillVerified(ctx context.Context, userID, skill string, record models.SkillVerification) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET verified_skills = COALESCE(verified_skills, '{}'::jsonb) || jsonb_build_object($2::text, $3::jsonb)
		WHERE id = $1`, userID, skill, string(payload))
	if err != nil {
		return apperrors.NewSkillVerificationWriteFailedError(userID, skill, err)
	}
	return s.afterWrite(ctx, res, userID)
}

func (s *PostgresStore) UnverifySkill(ctx context.Context, userID, skill string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET verified_skills = COALESCE(verified_skills, '{}'::jsonb) - $2::text
		WHERE id = $1`, userID, skill)
	if err != nil {
		return apperrors.NewSkillVerificationWriteFailedError(userID, skill, err)
	}
	return s.afterWrite(ctx, res, userID)
}

func (s *PostgresStore) afterWrite(ctx context.Context, res sql.Result, userID string) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, userCacheKey(userID)).Err(); err != nil {
			s.logger.Warn("user cache invalidation failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}
	return nil
}

func (s *PostgresStore) cached(ctx context.Context, id string) *models.User {
	if s.cache == nil {
		return nil
	}
	val, err := s.cache.Get(ctx, userCacheKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("user cache read failed", map[string]interface{}{
				"userId": id,
				"error":  err.Error(),
			})
		}
		return nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		s.logger.Debug("user cache entry unreadable", map[string]interface{}{
			"userId": id,
			"error":  err.Error(),
		})
		return nil
	}
	return &user
}

func (s *PostgresStore) store(ctx context.Context, user *models.User) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, userCacheKey(user.ID), data, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("user cache write failed", map[string]interface{}{
			"userId": user.ID,
			"error":  err.Error(),
		})
	}
}

func (s *PostgresStore) queryError(queryType string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return apperrors.NewQueryExecutionFailedError(queryType, err)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		user                models.User
		college, email      sql.NullString
		year                sql.NullInt64
		skills, verifiedRaw []byte
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Name, &user.Department,
		&college, &year, &email, &skills, &verifiedRaw); err != nil {
		return nil, err
	}

	user.College = college.String
	user.Email = email.String
	user.Year = int(year.Int64)
	user.Skills = models.SkillSetFromJSON(skills)
	user.VerifiedSkills = map[string]models.SkillVerification{}
	if len(strings.TrimSpace(string(verifiedRaw))) > 0 {
		if err := json.Unmarshal(verifiedRaw, &user.VerifiedSkills); err != nil {
			return nil, fmt.Errorf("decode verified_skills: %w", err)
		}
		if user.VerifiedSkills == nil {
			user.VerifiedSkills = map[string]models.SkillVerification{}
		}
	}
	return &user, nil
}
