package userstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultListSize = 1000

const markScript = `if (ctx._source.verified_skills == null) { ctx._source.verified_skills = [:]; } ` +
	`ctx._source.verified_skills[params.skill] = params.record;`

const unverifyScript = `if (ctx._source.verified_skills != null) { ctx._source.verified_skills.remove(params.skill); }`

// IndexMapping pins the fields used in term queries to keyword so lookups
// by username and department match whole values.
var IndexMapping = []byte(`{
  "mappings": {
    "properties": {
      "user_id":         {"type": "keyword"},
      "username":        {"type": "keyword"},
      "name":            {"type": "text"},
      "department":      {"type": "keyword"},
      "college":         {"type": "text"},
      "year":            {"type": "integer"},
      "email":           {"type": "keyword"},
      "verified_skills": {"type": "object"}
    }
  }
}`)

// ElasticStore keeps one document per user in an index; the document id is
// the user id.
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticStore(client *elasticsearch.Client, index string) *ElasticStore {
	if index == "" {
		index = "users"
	}
	return &ElasticStore{client: client, index: index}
}

type esHit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	res, err := s.client.Get(s.index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError("user_by_id", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError("user_by_id", responseError(res))
	}

	var hit esHit
	if err := json.NewDecoder(res.Body).Decode(&hit); err != nil {
		return nil, apperrors.NewSearchQueryFailedError("user_by_id", err)
	}
	return decodeHit(hit)
}

func (s *ElasticStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"username": username},
		},
	}
	users, err := s.search(ctx, "user_by_username", query, 1)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (s *ElasticStore) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{map[string]interface{}{"_id": "asc"}},
	}
	if filter.Department != "" {
		query["query"] = map[string]interface{}{
			"term": map[string]interface{}{
				"department": map[string]interface{}{
					"value":            filter.Department,
					"case_insensitive": true,
				},
			},
		}
	}

	size := filter.Limit
	if size <= 0 {
		size = defaultListSize
	}
	return s.search(ctx, "list_users", query, size)
}

func (s *ElasticStore) MarkSkillVerified(ctx context.Context, userID, skill string, record models.SkillVerification) error {
	return s.update(ctx, userID, skill, markScript, map[string]interface{}{
		"skill":  skill,
		"record": record,
	})
}

func (s *ElasticStore) UnverifySkill(ctx context.Context, userID, skill string) error {
	return s.update(ctx, userID, skill, unverifyScript, map[string]interface{}{"skill": skill})
}

func (s *ElasticStore) update(ctx context.Context, userID, skill, script string, params map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"script": map[string]interface{}{
			"source": script,
			"lang":   "painless",
			"params": params,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	res, err := s.client.Update(s.index, userID, bytes.NewReader(body),
		s.client.Update.WithContext(ctx),
		s.client.Update.WithRefresh("wait_for"),
	)
	if err != nil {
		return apperrors.NewSkillVerificationWriteFailedError(userID, skill, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if res.IsError() {
		return apperrors.NewSkillVerificationWriteFailedError(userID, skill, responseError(res))
	}
	return nil
}

func (s *ElasticStore) search(ctx context.Context, queryType string, query map[string]interface{}, size int) ([]models.User, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(queryType, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(queryType, responseError(res))
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(queryType, err)
	}

	users := make([]models.User, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		user, err := decodeHit(hit)
		if err != nil {
			return nil, apperrors.NewSearchQueryFailedError(queryType, err)
		}
		users = append(users, *user)
	}
	return users, nil
}

func decodeHit(hit esHit) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal(hit.Source, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", hit.ID, err)
	}
	if user.ID == "" {
		user.ID = hit.ID
	}
	if user.VerifiedSkills == nil {
		user.VerifiedSkills = map[string]models.SkillVerification{}
	}
	return &user, nil
}

func responseError(res *esapi.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch %s: %s", res.Status(), string(raw))
}
