// Package notify announces verified skills by email (SES) and as an SNS event.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "collabquest/internal/common/errors"
	"collabquest/internal/common/logger"
	"collabquest/internal/common/metrics"
	"collabquest/internal/models"
	"collabquest/internal/userstore"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const EventSkillVerified = "skill.verified"

type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type EventAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SkillVerifiedEvent is the SNS message body.
type SkillVerifiedEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	Username   string `json:"username,omitempty"`
	Skill      string `json:"skill"`
	Method     string `json:"method,omitempty"`
	VerifierID string `json:"verifier_id,omitempty"`
	VerifiedAt string `json:"verified_at,omitempty"`
}

// Notifier sends the configured notifications. A nil email or event client
// disables that channel. Failures are logged and counted, never returned.
type Notifier struct {
	email    EmailAPI
	from     string
	events   EventAPI
	topicARN string
	logger   logger.Logger
}

func NewNotifier(email EmailAPI, from string, events EventAPI, topicARN string, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Notifier{email: email, from: from, events: events, topicARN: topicARN, logger: log}
}

func (n *Notifier) SkillVerified(ctx context.Context, user *models.User, skill string, record models.SkillVerification) {
	if n.email != nil && user.Email != "" {
		n.sendEmail(ctx, user, skill)
	}
	if n.events != nil {
		n.publish(ctx, user, skill, record)
	}
}

func (n *Notifier) sendEmail(ctx context.Context, user *models.User, skill string) {
	name := user.Name
	if name == "" {
		name = user.Username
	}
	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.from),
		Destination: &sestypes.Destination{ToAddresses: []string{user.Email}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(fmt.Sprintf("Skill verified: %s", skill))},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(fmt.Sprintf(
					"Hi %s,\n\nYour %s skill is now verified on your profile.\n", name, skill))},
			},
		},
	})
	n.record("email", user.ID, skill, err)
}

func (n *Notifier) publish(ctx context.Context, user *models.User, skill string, record models.SkillVerification) {
	payload, err := json.Marshal(SkillVerifiedEvent{
		Type:       EventSkillVerified,
		UserID:     user.ID,
		Username:   user.Username,
		Skill:      skill,
		Method:     record.Method,
		VerifierID: record.VerifierID,
		VerifiedAt: record.VerifiedAt,
	})
	if err != nil {
		n.record("event", user.ID, skill, err)
		return
	}

	_, err = n.events.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(EventSkillVerified)},
		},
	})
	n.record("event", user.ID, skill, err)
}

func (n *Notifier) record(channel, userID, skill string, err error) {
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(channel, "failed").Inc()
		stdErr := apperrors.NewNotificationSendFailedError(channel, err)
		n.logger.Warn("Skill notification failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
			"userId":    userID,
			"skill":     skill,
		})
		return
	}
	metrics.NotificationsSent.WithLabelValues(channel, "sent").Inc()
}

// VerifiedSkillStore notifies after every successful MarkSkillVerified of
// the wrapped store.
type VerifiedSkillStore struct {
	userstore.Store
	notifier *Notifier
	logger   logger.Logger
}

func Wrap(store userstore.Store, notifier *Notifier, log logger.Logger) *VerifiedSkillStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &VerifiedSkillStore{Store: store, notifier: notifier, logger: log}
}

func (s *VerifiedSkillStore) MarkSkillVerified(ctx context.Context, userID, skill string, record models.SkillVerification) error {
	if err := s.Store.MarkSkillVerified(ctx, userID, skill, record); err != nil {
		return err
	}

	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Skipping skill notification, user lookup failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil
	}
	s.notifier.SkillVerified(ctx, user, skill, record)
	return nil
}
