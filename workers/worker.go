package workers

import (
	"github.com/sirupsen/logrus"

	"github.com/lightgodwoken/unlock-workers/notify"
)

type WorkerAbs struct {
	ID        int
	Name      string
	Frequency int // in sec
	Quit      chan bool
	Network   string // mainnet, testnet, ...
	Logger    *logrus.Entry
	Notifier  notify.Sink
}

type Worker interface {
	Execute()
	GetName() string
	GetFrequency() int
	GetQuitChan() chan bool
	GetNetwork() string
}

func (a *WorkerAbs) Init(id int, name string, freq int, network string, logger *logrus.Entry, notifier notify.Sink) {
	a.ID = id
	a.Name = name
	a.Frequency = freq
	a.Quit = make(chan bool)
	a.Network = network
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	a.Logger = logger.WithFields(logrus.Fields{
		"worker":  name,
		"network": network,
	})
	a.Notifier = notifier
}

func (a *WorkerAbs) GetName() string {
	return a.Name
}

func (a *WorkerAbs) GetFrequency() int {
	return a.Frequency
}

func (a *WorkerAbs) GetQuitChan() chan bool {
	return a.Quit
}

func (a *WorkerAbs) GetNetwork() string {
	return a.Network
}

// ExportErrorLog logs msg and raises it to the alert channel.
func (a *WorkerAbs) ExportErrorLog(msg string) {
	a.Logger.Error(msg)
	if a.Notifier != nil {
		a.Notifier.Error(msg)
	}
}

func (a *WorkerAbs) ExportInfoLog(msg string) {
	a.Logger.Info(msg)
	if a.Notifier != nil {
		a.Notifier.Info(msg)
	}
}
