// Package tracker binds a tracker directory to a store: it loads the data
// and history files, runs changes under the tracker lock, and saves both
// files back.
package tracker

import (
	"github.com/twiced-technology-gmbh/tasktracker/internal/activity"
	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/filelock"
	"github.com/twiced-technology-gmbh/tasktracker/internal/persist"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
)

// Tracker is a tracker directory described by its config.
type Tracker struct {
	cfg *config.Config
}

// New returns a Tracker for cfg.
func New(cfg *config.Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// Config returns the tracker's config.
func (t *Tracker) Config() *config.Config {
	return t.cfg
}

// Files returns the paths of the data and history files.
func (t *Tracker) Files() []string {
	return []string{t.cfg.DataPath(), t.cfg.HistoryPath()}
}

// Load reads the data and history files into a new store. Mutations of the
// returned store are appended to the activity log.
func (t *Tracker) Load() (*store.Store, error) {
	return t.load(activity.Observer(t.cfg.Dir()))
}

func (t *Tracker) load(observer store.Observer) (*store.Store, error) {
	s, err := persist.LoadFromFile(t.cfg.DataPath(),
		store.WithHistoryLimit(t.cfg.HistoryLimit),
		store.WithObserver(observer))
	if err != nil {
		return nil, err
	}
	if err := persist.LoadHistory(s, t.cfg.HistoryPath()); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s to the data and history files while holding the tracker lock.
func (t *Tracker) Save(s *store.Store) error {
	return filelock.WithLock(t.cfg.LockPath(), func() error {
		return t.save(s)
	})
}

// Update loads the store, applies fn and saves the result, all under the
// tracker lock so concurrent invocations do not lose each other's changes.
// Nothing is saved when fn fails. The mutations reach the activity log only
// once the save succeeded.
func (t *Tracker) Update(fn func(*store.Store) error) error {
	return filelock.WithLock(t.cfg.LockPath(), func() error {
		var pending []store.Mutation
		s, err := t.load(func(m store.Mutation) { pending = append(pending, m) })
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := t.save(s); err != nil {
			return err
		}

		logMutation := activity.Observer(t.cfg.Dir())
		for _, m := range pending {
			logMutation(m)
		}
		return nil
	})
}

func (t *Tracker) save(s *store.Store) error {
	if err := persist.Save(s, t.cfg.DataPath()); err != nil {
		return err
	}
	return persist.SaveHistory(s, t.cfg.HistoryPath())
}
