package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

// DefaultPath is where the task file lives when nothing else is configured.
const DefaultPath = "data/database.json"

// Save writes the collection as an indented JSON array. The document goes to
// a temporary file next to path which is renamed over path once it is fully
// written and synced.
func (m *Manager) Save(path string) (err error) {
	records := make([]model.Record, 0, len(m.tasks))
	for _, task := range m.tasks {
		records = append(records, task.Record())
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create task file dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp task file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod task file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync task file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close task file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace task file: %w", err)
	}

	m.logger.Debug("task file saved", zap.String("path", path), zap.Int("tasks", len(records)))
	return nil
}

// Load replaces the collection with the contents of path. A missing file or
// a document that is not JSON at all leaves an empty collection and logs a
// warning. A JSON document that does not describe tasks is returned as an
// error and the collection is left as it was, so a following Save cannot
// overwrite data it failed to read.
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("no task file found, starting with an empty task list", zap.String("path", path))
			m.replace(nil)
			return nil
		}
		return fmt.Errorf("read task file: %w", err)
	}

	if !json.Valid(data) {
		m.logger.Warn("could not decode task file, starting with an empty task list", zap.String("path", path))
		m.replace(nil)
		return nil
	}

	loaded, err := decode(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if index, ok := duplicateID(loaded); ok {
		m.logger.Warn("task file has duplicate ids, only the first match is reachable",
			zap.String("path", path), zap.Int("id", loaded[index].ID()))
	}

	m.replace(loaded)
	m.logger.Debug("task file loaded", zap.String("path", path), zap.Int("tasks", len(loaded)))
	return nil
}

// CheckFile validates the document at path without loading it: it must parse,
// match the schema, carry parseable timestamps and use unique ids.
func CheckFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read task file: %w", err)
	}
	loaded, err := decode(data)
	if err != nil {
		return err
	}

	if i, ok := duplicateID(loaded); ok {
		return &model.ValidationError{
			Field: fmt.Sprintf("[%d].id", i),
			Err:   fmt.Errorf("duplicate id %d", loaded[i].ID()),
		}
	}
	return nil
}

// duplicateID reports the index of the first task whose id was already seen.
func duplicateID(loaded []*model.Task) (int, bool) {
	seen := make(map[int]struct{}, len(loaded))
	for i, task := range loaded {
		if _, ok := seen[task.ID()]; ok {
			return i, true
		}
		seen[task.ID()] = struct{}{}
	}
	return 0, false
}

func decode(data []byte) ([]*model.Task, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var loaded []*model.Task
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return loaded, nil
}
