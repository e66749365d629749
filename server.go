package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lightgodwoken/unlock-workers/config"
	"github.com/lightgodwoken/unlock-workers/unlock"
	"github.com/lightgodwoken/unlock-workers/workers"
)

type Server struct {
	quit    chan os.Signal
	finish  chan bool
	workers []workers.Worker
	logger  *logrus.Entry
}

func NewServer(cfg *config.Config, app *App) (*Server, error) {
	listWorkers := []workers.Worker{}

	if contain(cfg.WorkerIDs, workers.WithdrawalMonitorID) {
		withdrawalMonitor := &workers.WithdrawalMonitor{}
		deps := unlock.Deps{
			Client:   app.Client,
			Tokens:   app.Tokens,
			History:  app.History,
			Notifier: app.Notifier,
			Reporter: app.Reporter,
			Logger:   app.Logger,
		}
		err := withdrawalMonitor.Init(
			workers.WithdrawalMonitorID, workers.WithdrawalMonitorName, cfg.MonitorFrequency,
			cfg.Network, deps, cfg.AutoUnlock, app.MonitorDB,
		)
		if err != nil {
			return nil, fmt.Errorf("Can't init %v: %w", workers.WithdrawalMonitorName, err)
		}
		listWorkers = append(listWorkers, withdrawalMonitor)
	}

	if len(listWorkers) == 0 {
		return nil, fmt.Errorf("no known worker in WORKER_IDS %v", cfg.WorkerIDs)
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	return &Server{
		quit:    quitChan,
		finish:  make(chan bool, len(listWorkers)),
		workers: listWorkers,
		logger:  app.Logger,
	}, nil
}

func (s *Server) NotifyQuitSignal(workers []workers.Worker) {
	sig := <-s.quit
	s.logger.Infof("Caught sig: %+v", sig)
	// notify all workers about quit signal
	for _, a := range workers {
		a.GetQuitChan() <- true
	}
}

func (s *Server) Run() {
	workers := s.workers
	go s.NotifyQuitSignal(workers)
	for _, a := range workers {
		go executeWorker(s.finish, a, s.logger)
	}
}

func executeWorker(finish chan bool, worker workers.Worker, logger *logrus.Entry) {
	worker.Execute() // execute as soon as starting up
	for {
		select {
		case <-worker.GetQuitChan():
			logger.Infof("Finishing task for %s ...", worker.GetName())
			time.Sleep(time.Second * 1)
			logger.Infof("Task for %s done!", worker.GetName())
			finish <- true
			return
		case <-time.After(time.Duration(worker.GetFrequency()) * time.Second):
			worker.Execute()
		}
	}
}

func contain(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
