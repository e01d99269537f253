package state

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"o365sync/internal/structs"
	"o365sync/internal/util"
)

const (
	GUIDFileName    = "guid.txt"
	VersionFileName = "o365_version.txt"
	LockFileName    = "run.lock"
)

var (
	versionPattern = regexp.MustCompile(`^[0-9]{10}$`)

	ErrLocked = errors.New("another run holds the lock")
)

// Store persists the client correlation identifier and the last applied
// catalog version as two single-line files under one directory.
type Store struct {
	dir         string
	guidFile    string
	versionFile string
	lockFile    string
}

func NewStore(dir string) *Store {
	return &Store{
		dir:         dir,
		guidFile:    filepath.Join(dir, GUIDFileName),
		versionFile: filepath.Join(dir, VersionFileName),
		lockFile:    filepath.Join(dir, LockFileName),
	}
}

// ValidVersion reports whether token has the provider's observed version shape.
func ValidVersion(token string) bool {
	return versionPattern.MatchString(token)
}

func (s *Store) ensureDir() error {
	created, err := util.CreateDirIfNotExist(s.dir)
	if err != nil {
		return err
	}
	if created {
		logrus.Info("Created work directory ", s.dir, " because it did not exist.")
	}
	return nil
}

// LoadOrCreateClientID returns the persisted UUID, generating and persisting a
// new version 4 UUID when the file is absent or does not hold a valid one.
func (s *Store) LoadOrCreateClientID() (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	content, err := util.ReadFirstLine(s.guidFile)
	if err == nil {
		if _, parseErr := uuid.Parse(content); parseErr == nil {
			logrus.Debug("Valid GUID is read from local file ", s.guidFile, ".")
			return content, nil
		}
	}

	guid := uuid.New().String()
	if err := util.AtomicWriteFile(s.guidFile, []byte(guid), 0644); err != nil {
		return "", errors.Wrap(err, "error saving generated GUID")
	}
	logrus.Info("Generated a new GUID, and saved it to ", s.guidFile, ".")

	return guid, nil
}

// LoadLastVersion returns the persisted version, or persists and returns
// structs.NeverSynced when it is absent or malformed.
func (s *Store) LoadLastVersion() (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	content, err := util.ReadFirstLine(s.versionFile)
	if err == nil && ValidVersion(content) {
		logrus.Debug("Valid previous VERSION found in ", s.versionFile, ".")
		return content, nil
	}

	if err := s.SaveLastVersion(structs.NeverSynced); err != nil {
		return "", err
	}
	logrus.Info("Valid previous VERSION was not found. Wrote dummy value in ", s.versionFile, ".")

	return structs.NeverSynced, nil
}

func (s *Store) SaveLastVersion(token string) error {
	if err := util.AtomicWriteFile(s.versionFile, []byte(token), 0644); err != nil {
		return errors.Wrap(err, fmt.Sprintf("error saving version %s", token))
	}
	return nil
}

// Lock takes the per-node run lock. A lock left by a process that is no longer
// running is removed. The returned func releases the lock.
func (s *Store) Lock() (func(), error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(s.lockFile); err == nil {
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr == nil && pid > 0 && pid != os.Getpid() && isProcessRunning(pid) {
			return nil, errors.Wrapf(ErrLocked, "pid %d", pid)
		}
		logrus.Warn("Removing stale lock file ", s.lockFile)
		_ = os.Remove(s.lockFile)
	}

	f, err := os.OpenFile(s.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, errors.Wrap(err, "error creating lock file")
	}

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		f.Close()
		os.Remove(s.lockFile)
		return nil, errors.Wrap(err, "error writing pid to lock file")
	}

	return func() {
		f.Close()
		os.Remove(s.lockFile)
	}, nil
}

func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
