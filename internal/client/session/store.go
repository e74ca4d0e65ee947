package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists a single Session snapshot under a fixed name.
// Only the Manager writes it; everyone else reads through the Manager.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// SnapshotName is the fixed file name of the durable session entry.
const SnapshotName = "authUser.json"

// FileStore keeps the snapshot as one JSON file in dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, SnapshotName)
}

func (s *FileStore) Load() (Session, error) {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// Битый снапшот равносилен его отсутствию
		return Session{}, ErrNoSession
	}
	if sess.Credential == "" || sess.Subject.UID == "" {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

func (s *FileStore) Save(sess Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), raw, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
