// Package archive keeps raw crawler metadata reports on disk so an
// ingested graph can always be traced back to its source report.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ReportArchive stores reports under a root directory, keyed by ingest
// date and content hash.
type ReportArchive struct {
	rootPath string
}

// NewReportArchive creates a ReportArchive rooted at the given directory.
func NewReportArchive(rootPath string) *ReportArchive {
	return &ReportArchive{rootPath: rootPath}
}

// Store writes the report content and returns its key. Identical
// content stored on the same day maps to the same key, so re-running an
// ingest does not duplicate the archive. Writes are atomic via temp
// file + rename.
func (a *ReportArchive) Store(ctx context.Context, reader io.Reader) (string, error) {
	dir := filepath.Join(a.rootPath, time.Now().UTC().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "report-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tempFile, hasher), reader); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	name := hex.EncodeToString(hasher.Sum(nil))[:16] + ".txt"
	fullPath := filepath.Join(dir, name)
	if err := os.Rename(tempFile.Name(), fullPath); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to rename temp file to %s: %w", fullPath, err)
	}

	key, err := filepath.Rel(a.rootPath, fullPath)
	if err != nil {
		return "", err
	}
	return key, nil
}

// Open retrieves an archived report by key.
func (a *ReportArchive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(a.rootPath, key)
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archived report %s not found", key)
		}
		return nil, fmt.Errorf("failed to open archived report %s: %w", key, err)
	}
	return file, nil
}

// List returns all archived report keys, newest date first.
func (a *ReportArchive) List(ctx context.Context) ([]string, error) {
	var keys []string

	err := filepath.Walk(a.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			relPath, err := filepath.Rel(a.rootPath, path)
			if err != nil {
				return err
			}
			keys = append(keys, relPath)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// Delete removes an archived report.
func (a *ReportArchive) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(a.rootPath, key)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("archived report %s not found", key)
		}
		return fmt.Errorf("failed to delete archived report %s: %w", key, err)
	}
	return nil
}
