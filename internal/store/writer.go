package store

import (
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Writer persists finished download buffers under stable relative paths.
type Writer interface {
	Save(data []byte, filename string) (string, error)
	Delete(relPath string) error
}

// FileWriter stores files under a base music directory and hands back paths
// relative to it. Playback and cleanup resolve the same relative paths.
type FileWriter struct {
	baseDir string
}

func NewFileWriter(baseDir string) *FileWriter {
	return &FileWriter{baseDir: baseDir}
}

// Save writes data to filename inside the base directory and returns the
// relative path. The write goes through a temp file and rename so a crash
// mid-write never leaves a half-written track behind.
func (w *FileWriter) Save(data []byte, filename string) (string, error) {
	if err := os.MkdirAll(w.baseDir, dirPerm); err != nil {
		return "", &StorageError{Path: filename, Err: err}
	}

	target := filepath.Join(w.baseDir, filename)

	tmp, err := os.CreateTemp(w.baseDir, filename+".tmp-*")
	if err != nil {
		return "", &StorageError{Path: filename, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return "", &StorageError{Path: filename, Err: err}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return "", &StorageError{Path: filename, Err: err}
	}

	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		os.Remove(tmp.Name())

		return "", &StorageError{Path: filename, Err: err}
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())

		return "", &StorageError{Path: filename, Err: err}
	}

	return filename, nil
}

// Delete removes a previously saved file. Deleting a missing file is not an error.
func (w *FileWriter) Delete(relPath string) error {
	if err := os.Remove(filepath.Join(w.baseDir, relPath)); err != nil && !os.IsNotExist(err) {
		return &StorageError{Path: relPath, Err: err}
	}

	return nil
}
