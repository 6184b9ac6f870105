package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"

	"github.com/horlartundhey/servisbet-sub001/internal/services"
)

// LoadAWSConfig resolves credentials from the default chain for region.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// EmailAPI is the subset of the SES client used by Email.
type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email sends mail through SES.
type Email struct {
	api    EmailAPI
	from   string
	logger zerolog.Logger
}

// NewEmail returns an Email notifier sending from the given address.
func NewEmail(api EmailAPI, from string, logger zerolog.Logger) *Email {
	return &Email{api: api, from: from, logger: logger}
}

// NewEmailFromConfig builds the SES client from cfg.
func NewEmailFromConfig(cfg aws.Config, from string, logger zerolog.Logger) *Email {
	return NewEmail(ses.NewFromConfig(cfg), from, logger)
}

// Notify implements services.Notifier. Reviewers hear about responses to
// their review and business owners hear about failed batches.
func (e *Email) Notify(ctx context.Context, ev services.Event) {
	var to, subject, body string
	switch ev.Type {
	case services.EventReviewResponded:
		if ev.ReviewerEmail == "" {
			return
		}
		to = ev.ReviewerEmail
		subject = fmt.Sprintf("%s responded to your review", businessLabel(ev))
		body = fmt.Sprintf("Hi %s,\n\n%s replied to your review:\n\n%s\n", ev.ReviewerName, businessLabel(ev), ev.ResponseText)
	case services.EventScheduleFailed:
		if ev.BusinessEmail == "" {
			return
		}
		to = ev.BusinessEmail
		subject = "A scheduled review response batch failed"
		body = fmt.Sprintf("Scheduled batch %s could not be sent: %s\n", ev.ScheduleID, ev.Error)
	default:
		return
	}

	_, err := e.api.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(e.from),
	})
	if err != nil {
		e.logger.Error().Err(err).Str("event", string(ev.Type)).Msg("send email")
	}
}

// SMSAPI is the subset of the SNS client used by SMS.
type SMSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMS texts the business contact phone through SNS.
type SMS struct {
	api    SMSAPI
	logger zerolog.Logger
}

// NewSMS returns an SMS notifier.
func NewSMS(api SMSAPI, logger zerolog.Logger) *SMS {
	return &SMS{api: api, logger: logger}
}

// NewSMSFromConfig builds the SNS client from cfg.
func NewSMSFromConfig(cfg aws.Config, logger zerolog.Logger) *SMS {
	return NewSMS(sns.NewFromConfig(cfg), logger)
}

// Notify implements services.Notifier.
func (s *SMS) Notify(ctx context.Context, ev services.Event) {
	if ev.BusinessPhone == "" {
		return
	}
	var msg string
	switch ev.Type {
	case services.EventScheduleCompleted:
		msg = fmt.Sprintf("%s: scheduled responses sent (%d ok, %d failed).", businessLabel(ev), ev.Sent, ev.Failed)
	case services.EventScheduleFailed:
		msg = fmt.Sprintf("%s: scheduled responses failed: %s", businessLabel(ev), ev.Error)
	default:
		return
	}
	_, err := s.api.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(ev.BusinessPhone),
		Message:     aws.String(msg),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event", string(ev.Type)).Msg("send sms")
	}
}

func businessLabel(ev services.Event) string {
	if ev.BusinessName != "" {
		return ev.BusinessName
	}
	return "Your business"
}
