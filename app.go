package main

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"course_miniapp/api"
	"course_miniapp/config"
	"course_miniapp/db"
	"course_miniapp/httpclient"
	"course_miniapp/initdata"
	"course_miniapp/store"
)

// app is the wiring shared by the server and the one-shot commands.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	db       *badger.DB
	registry *prometheus.Registry
	backend  *api.Backend
	store    *store.Store
}

func newApp(cfg *config.Config, log *logrus.Logger) (*app, error) {
	database, err := db.Initialize(db.Config{
		Path:     cfg.StorageDir,
		InMemory: cfg.StorageInMemory,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.APIBaseURL,
		Tokens:  db.NewTokenStore(database, db.DefaultTokenKey),
		Timeout: cfg.RequestTimeout,
		Logger:  log,
		Metrics: httpclient.NewMetrics(registry),
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("error creating http client: %w", err)
	}

	backend, err := api.New(client, api.Options{UseMocks: cfg.UseMocks})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("error creating api: %w", err)
	}

	chain := initdata.NewChain(log,
		initdata.LaunchParams{URL: cfg.TelegramLaunchURL},
		initdata.Raw{Source: "TELEGRAM_INIT_DATA", Value: cfg.TelegramInitData},
		initdata.Unsafe{Data: cfg.TelegramInitDataUnsafe},
	)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       database,
		registry: registry,
		backend:  backend,
		store:    store.New(backend, store.Options{InitData: chain, Logger: log}),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
