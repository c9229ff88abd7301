package main

import (
	"github.com/sirupsen/logrus"

	"github.com/binrep/binrep/internal/backend"
	"github.com/binrep/binrep/internal/config"
	"github.com/binrep/binrep/internal/notify"
	"github.com/binrep/binrep/internal/puller"
	"github.com/binrep/binrep/internal/repository"
	"github.com/binrep/binrep/internal/syncer"
)

// loadConfig resolves path (or the default search path when empty) and
// decodes it.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		found, err := config.Find()
		if err != nil {
			return config.Config{}, err
		}
		path = found
	}
	return config.Load(path)
}

func buildNotifier(cfg config.Config) notify.Notifier {
	if cfg.SlackWebhookURL == "" {
		return notify.NoopNotifier{}
	}
	return notify.NewSlackSink(cfg.SlackWebhookURL)
}

func buildRepository(cfg config.Config) (*repository.Repository, error) {
	b, err := backend.Open(cfg.Backend)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	repo := repository.New(b, cfg.Keys, logrus.NewEntry(log))
	repo.Notifier = buildNotifier(cfg)
	return repo, nil
}

func buildPuller(repo *repository.Repository, maxParallel int) *puller.Puller {
	return puller.New(repo, repo.Keys, maxParallel)
}

func buildSyncer(repo *repository.Repository, maxParallel int) *syncer.Syncer {
	s := syncer.New(buildPuller(repo, maxParallel))
	s.Notifier = repo.Notifier
	return s
}
