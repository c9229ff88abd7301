package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/binrep/binrep/internal/binreperr"
)

// Watch reloads path whenever it changes on disk and delivers each
// successfully-decoded Config on the returned channel, for the watch
// daemon's long-lived process. Decode errors are logged and otherwise
// ignored, so a transient edit (or an editor's write-then-rename) never
// kills the daemon; the previous Config keeps being used until a valid one
// arrives. Call the returned stop func to release the watch.
func Watch(path string, log *logrus.Entry) (<-chan Config, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, binreperr.Config("starting config watcher", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, nil, binreperr.Config("watching config file", err)
	}

	out := make(chan Config)
	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					log.WithError(err).Warn("config: reload failed, keeping previous configuration")
					continue
				}
				out <- cfg
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config: watch error")
			}
		}
	}()

	return out, func() { watcher.Close() }, nil
}
