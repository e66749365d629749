package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lightgodwoken/unlock-workers/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Error loading config: " + err.Error())
	}

	logger := newLogger(cfg)
	printConfig(cfg, logger)

	runtime.GOMAXPROCS(runtime.NumCPU())
	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

// run owns the app for the process lifetime. Returning, on error or after a
// graceful stop, always closes its databases.
func run(cfg *config.Config, logger *logrus.Entry) error {
	app, err := NewApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("Could not build app - with err: %w", err)
	}
	defer app.Close()

	s, err := NewServer(cfg, app)
	if err != nil {
		return fmt.Errorf("Could not build server - with err: %w", err)
	}

	s.Run()
	for range s.workers {
		<-s.finish
	}
	app.Flush(2 * time.Second)
	logger.Info("Server stopped gracefully!")
	return nil
}

func newLogger(cfg *config.Config) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logrus.NewEntry(logger).WithField("service", "unlock-workers")
}

func printConfig(cfg *config.Config, logger *logrus.Entry) {
	printable := cfg.Printable()
	keys := make([]string, 0, len(printable))
	for key := range printable {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	logger.Info("=========Config============")
	for _, key := range keys {
		logger.Info(key + ": " + printable[key])
	}
	logger.Info("=========End============")
}
