package bigip

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"o365sync/internal/structs"
)

var ErrCommandFailed = errors.New("tmsh command failed")

// Executor runs a command and returns its combined output.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// CommandExecutor runs commands on the local host.
type CommandExecutor struct{}

func (CommandExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Session drives the device configuration through tmsh.
type Session struct {
	TmshPath string
	executor Executor
}

func NewSession(tmshPath string, executor Executor) *Session {
	if tmshPath == "" {
		tmshPath = DefaultTmshPath
	}
	if executor == nil {
		executor = CommandExecutor{}
	}
	return &Session{
		TmshPath: tmshPath,
		executor: executor,
	}
}

// IsActive reports whether the failover status of this device is ACTIVE.
func (s *Session) IsActive(ctx context.Context) (bool, error) {
	out, err := s.run(ctx, "show", "/cm", "failover-status", "field-fmt")
	if err != nil {
		return false, err
	}
	return strings.Contains(out, activeStatus), nil
}

// Apply replaces the exclusion entries of one record type on a network access list.
func (s *Session) Apply(ctx context.Context, req structs.ApplyRequest) error {
	args, err := ApplyArgs(req)
	if err != nil {
		return err
	}
	out, err := s.run(ctx, args...)
	if err != nil {
		return err
	}
	logrus.Debug(strings.TrimSpace(out))
	return nil
}

// RegenerateProfile bumps the access profile generation so clients pick up the new lists.
func (s *Session) RegenerateProfile(ctx context.Context, profile string) error {
	_, err := s.run(ctx, "modify", "/apm", "profile", "access", profile, "generation-action", "increment")
	return err
}

// ConfigSync pushes the configuration of this device to the device group.
func (s *Session) ConfigSync(ctx context.Context, group string) error {
	out, err := s.run(ctx, "run", "cm", "config-sync", "to-group", group)
	if err != nil {
		return err
	}
	logrus.Debug(strings.TrimSpace(out))
	return nil
}

// ApplyArgs builds the tmsh arguments for an apply request. URL lists use
// replace-all-with, subnet lists are replaced by assignment.
func ApplyArgs(req structs.ApplyRequest) ([]string, error) {
	property, ok := excludeProperties[req.Payload.Type]
	if !ok {
		return nil, errors.New(fmt.Sprintf("unsupported record type: %s", req.Payload.Type))
	}
	if req.List == "" {
		return nil, errors.New("missing network access list name")
	}

	args := []string{"modify", "/apm", "resource", "network-access", req.List, property}
	if req.Payload.Type == structs.URL {
		args = append(args, "replace-all-with")
	}
	return append(args, "{", req.Payload.Text(), "}"), nil
}

func (s *Session) run(ctx context.Context, args ...string) (string, error) {
	out, err := s.executor.Run(ctx, s.TmshPath, args...)
	if err != nil {
		return out, errors.Wrapf(ErrCommandFailed, "%s %s: %v: %s", s.TmshPath, commandSummary(args), err, strings.TrimSpace(out))
	}
	return out, nil
}

// commandSummary keeps payloads out of error messages.
func commandSummary(args []string) string {
	if len(args) > 5 {
		args = args[:5]
	}
	return strings.Join(args, " ")
}
