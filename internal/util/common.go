package util

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// CreateDirIfNotExist reports whether the directory had to be created.
func CreateDirIfNotExist(dirPath string) (bool, error) {
	if _, err := os.Stat(dirPath); err == nil {
		return false, nil
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return false, errors.Wrap(err, fmt.Sprintf("error in creating: %s", dirPath))
		}
		return true, nil
	} else {
		return false, errors.Wrap(err, fmt.Sprintf("error in checking if directory exists: %s", dirPath))
	}
}

// ReadFirstLine returns the first line of the file without surrounding whitespace.
// A missing file yields os.ErrNotExist wrapped.
func ReadFirstLine(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("error in opening: %s", filePath))
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("error in reading: %s", filePath))
	}
	return "", nil
}

// AtomicWriteFile writes data to a temp file in the same directory, syncs it and
// renames it over filePath. Readers see either the old or the new content.
func AtomicWriteFile(filePath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filePath)
	if _, err := CreateDirIfNotExist(dir); err != nil {
		return err
	}

	tmp, err := ioutil.TempFile(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "error in creating temp file")
	}
	tmpPath := tmp.Name()

	// Clean up on any failure path. Remove is a no-op after a successful rename.
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, "error in writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "error in syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "error in closing temp file")
	}

	_ = os.Chmod(tmpPath, perm)

	if err := os.Rename(tmpPath, filePath); err != nil {
		return errors.Wrap(err, fmt.Sprintf("error in renaming temp file to: %s", filePath))
	}
	return nil
}
