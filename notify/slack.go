package notify

import (
	"errors"
	"fmt"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	AlertNotification = 0
	InfoNotification  = 1
)

type SlackRequestBody struct {
	Text string `json:"text"`
}

// SlackSink posts to 'Incoming Webhook' urls set up in Slack Apps. Errors go to
// the alert channel, everything else to the info channel.
type SlackSink struct {
	alertWebhookURL string
	infoWebhookURL  string
	client          *resty.Client
	logger          *logrus.Entry
}

func NewSlackSink(alertWebhookURL string, infoWebhookURL string, logger *logrus.Entry) *SlackSink {
	return &SlackSink{
		alertWebhookURL: alertWebhookURL,
		infoWebhookURL:  infoWebhookURL,
		client:          resty.New().SetTimeout(10 * time.Second),
		logger:          logger,
	}
}

func (s *SlackSink) SendSlackNotification(msg string, notiType int) error {
	var webhookURL string
	if notiType == AlertNotification {
		webhookURL = s.alertWebhookURL
	} else if notiType == InfoNotification {
		webhookURL = s.infoWebhookURL
	} else {
		return errors.New("Notification type is not supported")
	}
	if webhookURL == "" {
		return nil
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(SlackRequestBody{Text: msg}).
		Post(webhookURL)
	if err != nil {
		return err
	}
	if resp.String() != "ok" {
		return fmt.Errorf("Non-ok response returned from Slack: %v", resp.String())
	}
	return nil
}

func (s *SlackSink) send(msg string, notiType int) {
	if err := s.SendSlackNotification(msg, notiType); err != nil {
		s.logger.Warnf("Could not send slack notification - with err: %v", err)
	}
}

func (s *SlackSink) Success(msg string, link string) {
	if link != "" {
		msg = fmt.Sprintf("%s <%s|View on explorer>", msg, link)
	}
	s.send(msg, InfoNotification)
}

func (s *SlackSink) Error(msg string) {
	s.send(msg, AlertNotification)
}

func (s *SlackSink) Info(msg string) {
	s.send(msg, InfoNotification)
}
