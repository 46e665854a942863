package persist

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/filelock"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
)

const (
	fileMode       = 0o600
	historyVersion = 1
)

// historyFile is the on-disk form of the view history.
type historyFile struct {
	Version int   `yaml:"version"`
	Viewed  []int `yaml:"viewed"`
}

// Save writes every entity in s to path. The data is written to a temporary
// file in the same directory and renamed over path while holding path's
// lock file.
func Save(s *store.Store, path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Encode(w, s.All())
	})
}

// LoadFromFile creates a store from the data file at path. A missing file
// yields an empty store.
func LoadFromFile(path string, opts ...store.Option) (*store.Store, error) {
	s := store.New(opts...)
	if err := LoadInto(s, path); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadInto replaces the contents of s with the data file at path. A missing
// file leaves s as it is. On any error s is unchanged.
func LoadInto(s *store.Store, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path from tracker config
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return clierr.Wrap(clierr.IOFailure, err, "reading %s", path)
	}

	entities, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return s.Restore(entities)
}

// SaveHistory writes the view history of s to a YAML file at path.
func SaveHistory(s *store.Store, path string) error {
	hf := historyFile{Version: historyVersion, Viewed: s.HistoryIDs()}
	return writeAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd // standard YAML indent
		if err := enc.Encode(&hf); err != nil {
			return err
		}
		return enc.Close()
	})
}

// LoadHistory replays the history file at path into s. Ids that no longer
// exist are skipped; a missing file is not an error.
func LoadHistory(s *store.Store, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path from tracker config
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return clierr.Wrap(clierr.IOFailure, err, "reading %s", path)
	}

	var hf historyFile
	if err := yaml.Unmarshal(data, &hf); err != nil {
		return clierr.Wrap(clierr.CorruptData, err, "parsing %s", path)
	}
	if hf.Version > historyVersion {
		return clierr.Newf(clierr.CorruptData, "history file version %d is newer than supported %d", hf.Version, historyVersion)
	}
	s.RestoreHistory(hf.Viewed)
	return nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)

	err := filelock.WithLock(path+".lock", func() error {
		tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
		if err != nil {
			return err
		}
		tmpName := tmp.Name()
		defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

		if err := write(tmp); err != nil {
			_ = tmp.Close()
			return err
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		if err := os.Chmod(tmpName, fileMode); err != nil {
			return err
		}
		return os.Rename(tmpName, path)
	})
	if err != nil {
		return clierr.Wrap(clierr.IOFailure, err, "writing %s", path)
	}
	return nil
}

