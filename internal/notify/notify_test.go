package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"collabquest/internal/common/logger"
	"collabquest/internal/models"
	"collabquest/internal/userstore"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockEmail struct {
	mock.Mock
}

func (m *MockEmail) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, args.Error(0)
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	return &sns.PublishOutput{MessageId: aws.String("e-1")}, args.Error(0)
}

type MockStore struct {
	mock.Mock
	userstore.Store
}

func (m *MockStore) MarkSkillVerified(ctx context.Context, userID, skill string, record models.SkillVerification) error {
	return m.Called(ctx, userID, skill, record).Error(0)
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

var (
	alice  = &models.User{ID: "u1", Username: "alice", Name: "Alice", Email: "alice@example.com"}
	record = models.SkillVerification{Verified: true, VerifiedAt: "2026-02-01T00:00:00Z", Method: models.VerificationMethodQuiz}
)

// ==========================
// Tests
// ==========================

func TestNotifier_SkillVerified(t *testing.T) {
	email := new(MockEmail)
	events := new(MockEvents)

	email.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "noreply@collabquest.dev" &&
			in.Destination.ToAddresses[0] == "alice@example.com" &&
			aws.ToString(in.Message.Subject.Data) == "Skill verified: Go"
	})).Return(nil)

	events.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var ev SkillVerifiedEvent
		if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &ev); err != nil {
			return false
		}
		return aws.ToString(in.TopicArn) == "arn:aws:sns:eu-west-1:1:skills" &&
			ev.Type == EventSkillVerified && ev.UserID == "u1" && ev.Skill == "Go" && ev.Method == "quiz" &&
			aws.ToString(in.MessageAttributes["event_type"].StringValue) == EventSkillVerified
	})).Return(nil)

	n := NewNotifier(email, "noreply@collabquest.dev", events, "arn:aws:sns:eu-west-1:1:skills", logger.NewTestLogger(t))
	n.SkillVerified(context.Background(), alice, "Go", record)

	email.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestNotifier_NoEmailAddress(t *testing.T) {
	email := new(MockEmail)
	n := NewNotifier(email, "noreply@collabquest.dev", nil, "", nil)
	n.SkillVerified(context.Background(), &models.User{ID: "u2"}, "Go", record)
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestNotifier_FailuresAreSwallowed(t *testing.T) {
	email := new(MockEmail)
	events := new(MockEvents)
	email.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("throttled"))
	events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("topic missing"))

	n := NewNotifier(email, "a@b.c", events, "arn", logger.NewTestLogger(t))
	assert.NotPanics(t, func() { n.SkillVerified(context.Background(), alice, "Go", record) })
	events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestVerifiedSkillStore_NotifiesAfterMark(t *testing.T) {
	store := new(MockStore)
	events := new(MockEvents)
	store.On("MarkSkillVerified", mock.Anything, "u1", "Go", record).Return(nil)
	store.On("GetUser", mock.Anything, "u1").Return(alice, nil)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	wrapped := Wrap(store, NewNotifier(nil, "", events, "arn", nil), logger.NewTestLogger(t))
	require.NoError(t, wrapped.MarkSkillVerified(context.Background(), "u1", "Go", record))

	store.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestVerifiedSkillStore_MarkFailure(t *testing.T) {
	store := new(MockStore)
	events := new(MockEvents)
	store.On("MarkSkillVerified", mock.Anything, "u1", "Go", record).Return(userstore.ErrUserNotFound)

	wrapped := Wrap(store, NewNotifier(nil, "", events, "arn", nil), nil)
	err := wrapped.MarkSkillVerified(context.Background(), "u1", "Go", record)
	assert.ErrorIs(t, err, userstore.ErrUserNotFound)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestVerifiedSkillStore_LookupFailureStillSucceeds(t *testing.T) {
	store := new(MockStore)
	store.On("MarkSkillVerified", mock.Anything, "u1", "Go", record).Return(nil)
	store.On("GetUser", mock.Anything, "u1").Return(nil, errors.New("timeout"))

	wrapped := Wrap(store, NewNotifier(nil, "", nil, "", nil), nil)
	assert.NoError(t, wrapped.MarkSkillVerified(context.Background(), "u1", "Go", record))
}
