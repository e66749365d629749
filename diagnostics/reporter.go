package diagnostics

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// Reporter forwards unexpected failures for offline triage.
type Reporter interface {
	Capture(err error)
}

type SentryReporter struct {
	hub *sentry.Hub
}

func NewSentryReporter(dsn string, environment string) (*SentryReporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, err
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (r *SentryReporter) Capture(err error) {
	if err == nil {
		return
	}
	r.hub.CaptureException(err)
}

// Flush waits for buffered events to be delivered.
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

type LogReporter struct {
	Logger *logrus.Entry
}

func NewLogReporter(logger *logrus.Entry) *LogReporter {
	return &LogReporter{Logger: logger}
}

func (r *LogReporter) Capture(err error) {
	if err == nil {
		return
	}
	r.Logger.WithError(err).Error("captured exception")
}
