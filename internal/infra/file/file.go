// Package file persists users, questions and scores as flat JSON files.
//
// Reads are forgiving: a missing or corrupt file loads as an empty store and
// the problem is logged. Writes replace the whole file through a temp file and
// rename, so a crash never leaves a half-written store behind.
package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const indent = "    "

// readFile returns (nil, nil) when the file does not exist.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// loadJSON decodes path into v. It reports false when the store should start
// empty, logging why.
func loadJSON(path string, v any, log *zap.Logger) bool {
	data, err := readFile(path)
	if err != nil {
		log.Warn("store unreadable, starting empty", zap.String("path", path), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn("store corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, data)
}

func writeIndented(path string, compact []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return fmt.Errorf("indent %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, out.Bytes())
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
