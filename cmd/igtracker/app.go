package main

import (
	"context"
	"os"

	"igtracker/pkg/apify"
	"igtracker/pkg/auth"
	"igtracker/pkg/config"
	"igtracker/pkg/ftpstore"
	"igtracker/pkg/logger"
	"igtracker/pkg/sheets"
	"igtracker/pkg/tracker"
)

// app bundles the wired components a command needs
type app struct {
	cfg    *config.Config
	client *apify.Client
	store  *sheets.Store
	engine *tracker.Engine
	log    logger.Logger
}

// loadAppConfig resolves configuration, pulling missing secrets from the
// keychain before validation runs.
func loadAppConfig(flags map[string]interface{}) (*config.Config, error) {
	fillSecretsFromKeychain()
	return config.Load(configFile, flags)
}

// fillSecretsFromKeychain exports stored secrets as environment variables
// so the normal configuration precedence picks them up. Explicitly set
// variables win.
func fillSecretsFromKeychain() {
	manager := auth.NewManager()

	if os.Getenv("IGTRACKER_APIFY_TOKEN") == "" {
		if secret, err := manager.Retrieve(auth.SecretApifyToken); err == nil {
			os.Setenv("IGTRACKER_APIFY_TOKEN", secret.Value)
		}
	}
	if os.Getenv("IGTRACKER_FTP_PASSWORD") == "" {
		if secret, err := manager.Retrieve(auth.SecretFTPPassword); err == nil {
			os.Setenv("IGTRACKER_FTP_PASSWORD", secret.Value)
		}
	}
}

// newApp wires the full pipeline: actor client, spreadsheet store, image
// uploader, reconciliation engine.
func newApp(cfg *config.Config) (*app, error) {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	log := logger.GetLogger()

	values, err := sheets.NewGoogleValues(context.Background(), cfg.Sheets.CredentialsPath)
	if err != nil {
		return nil, err
	}

	store := sheets.NewStore(&cfg.Sheets, values, log)
	uploader := ftpstore.NewUploader(&cfg.FTP, log)
	client := apify.NewClient(&cfg.Apify, log)
	engine := tracker.NewEngine(store, uploader, log)

	return &app{
		cfg:    cfg,
		client: client,
		store:  store,
		engine: engine,
		log:    log,
	}, nil
}

// runBatch reads the URL column, scrapes the admitted post URLs, and
// reconciles the result into the data sheet. Scheduled runs stamp rows
// with a full datetime fecha.
func (a *app) runBatch() error {
	cells, err := a.store.ReadURLColumn()
	if err != nil {
		return err
	}

	urls := tracker.FilterPostURLs(cells)
	if len(urls) == 0 {
		a.log.Info("no post URLs to track, nothing to do")
		return nil
	}

	a.log.WithField("urls", len(urls)).Info("Starting tracking batch")

	items, err := a.client.Scrape(urls)
	if err != nil {
		return err
	}

	_, err = a.engine.Run(items, tracker.RunOptions{})
	return err
}
