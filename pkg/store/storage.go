package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Storage is a durable key-value slot the simulator persists its snapshot into.
type Storage interface {
	// Get returns the stored value and whether one exists.
	Get(key string) ([]byte, bool, error)

	Set(key string, value []byte) error

	Clear(key string) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage stores each key as <dir>/<key>.json.
type FileStorage struct {
	dir string
}

// NewFileStorage creates dir if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "cannot create state directory %s", dir)
	}
	return &FileStorage{dir: dir}, nil
}

// Path returns the file backing key.
func (f *FileStorage) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "cannot read %s", f.Path(key))
	}
	return data, true, nil
}

// Set writes through a temporary file and renames it into place.
func (f *FileStorage) Set(key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "cannot create temporary state file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "cannot write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "cannot close %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), f.Path(key)), "cannot replace %s", f.Path(key))
}

func (f *FileStorage) Clear(key string) error {
	err := os.Remove(f.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove %s", f.Path(key))
	}
	return nil
}

// SQLiteStorage keeps values in a single-table SQLite database.
type SQLiteStorage struct {
	conn *sql.DB
}

func OpenSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cannot create kv table")
	}
	glog.Infof("Opened SQLite state storage at %s", path)
	return &SQLiteStorage{conn: db}, nil
}

func createTables(conn *sql.DB) error {
	sqlStmt := `
	create table if not exists KV (
	  key text not null primary key,
	  value blob not null);
	`
	_, err := conn.Exec(sqlStmt)
	return err
}

func (s *SQLiteStorage) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.conn.QueryRow("select value from KV where key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "cannot read key %s", key)
	}
	return value, true, nil
}

func (s *SQLiteStorage) Set(key string, value []byte) error {
	_, err := s.conn.Exec(
		"insert into KV (key, value) values (?, ?) on conflict(key) do update set value = excluded.value",
		key, value)
	return errors.Wrapf(err, "cannot write key %s", key)
}

func (s *SQLiteStorage) Clear(key string) error {
	_, err := s.conn.Exec("delete from KV where key = ?", key)
	return errors.Wrapf(err, "cannot delete key %s", key)
}

func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}
