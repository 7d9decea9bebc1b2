package files

import (
	"bytes"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"strikecharts/internal/errors"
)

// Manager provides file management operations
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// FileExists checks if a regular file exists at the given path
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	exists := err == nil && !info.IsDir()

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.NewStorageError("failed to create directory "+path, err)
	}
	return nil
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	m.logger.Info("Copying file",
		slog.String("src", src),
		slog.String("dst", dst))

	if err := m.EnsureDirectory(filepath.Dir(dst)); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return errors.NewStorageError("failed to open source file", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return errors.NewStorageError("failed to create destination file", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.NewStorageError("failed to copy file content", err)
	}

	// Sync to ensure write is complete
	if err := dstFile.Sync(); err != nil {
		return errors.NewStorageError("failed to sync destination file", err)
	}
	return nil
}

// BackupPath returns the backup location for path: report.xlsx becomes
// report.bak.xlsx in the same directory
func BackupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".bak" + ext
}

// Checksum returns the BLAKE2b-256 digest of the file at path
func Checksum(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open file for checksum", err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, errors.NewStorageError("failed to create hash", err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return nil, errors.NewStorageError("failed to hash file", err)
	}
	return h.Sum(nil), nil
}

// Backup copies path to BackupPath(path), replacing an older backup, and
// verifies the copy against the original's checksum
func (m *Manager) Backup(path string) (string, error) {
	if !m.FileExists(path) {
		return "", errors.NewNotFoundError("file " + path)
	}

	want, err := Checksum(path)
	if err != nil {
		return "", err
	}

	dst := BackupPath(path)
	if err := m.CopyFile(path, dst); err != nil {
		return "", err
	}

	got, err := Checksum(dst)
	if err != nil {
		return "", err
	}
	if !bytes.Equal(want, got) {
		return "", errors.NewStorageError("backup does not match "+path, nil).
			WithContext("backup", dst)
	}

	m.logger.Info("Backup written",
		slog.String("path", path),
		slog.String("backup", dst),
		slog.String("blake2b", hex.EncodeToString(got)))
	return dst, nil
}
