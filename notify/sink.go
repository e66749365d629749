package notify

import "github.com/sirupsen/logrus"

// Sink shows messages to the account owner. A non-empty link makes a success
// message clickable.
type Sink interface {
	Success(msg string, link string)
	Error(msg string)
	Info(msg string)
}

type LogSink struct {
	Logger *logrus.Entry
}

func NewLogSink(logger *logrus.Entry) *LogSink {
	return &LogSink{Logger: logger}
}

func (s *LogSink) Success(msg string, link string) {
	entry := s.Logger.WithField("notification", "success")
	if link != "" {
		entry = entry.WithField("link", link)
	}
	entry.Info(msg)
}

func (s *LogSink) Error(msg string) {
	s.Logger.WithField("notification", "error").Error(msg)
}

func (s *LogSink) Info(msg string) {
	s.Logger.WithField("notification", "info").Info(msg)
}

// Multi fans every message out to all of its sinks, in order.
type Multi []Sink

func (m Multi) Success(msg string, link string) {
	for _, s := range m {
		s.Success(msg, link)
	}
}

func (m Multi) Error(msg string) {
	for _, s := range m {
		s.Error(msg)
	}
}

func (m Multi) Info(msg string) {
	for _, s := range m {
		s.Info(msg)
	}
}
