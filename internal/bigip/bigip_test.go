package bigip

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"o365sync/internal/structs"
)

type recordingExecutor struct {
	calls  [][]string
	output string
	err    error
}

func (e *recordingExecutor) Run(_ context.Context, name string, args ...string) (string, error) {
	e.calls = append(e.calls, append([]string{name}, args...))
	return e.output, e.err
}

func TestApplyArgs(t *testing.T) {
	tests := []struct {
		name     string
		req      structs.ApplyRequest
		expected string
	}{
		{
			name: "urls",
			req: structs.ApplyRequest{List: "NAL1", Payload: structs.Payload{
				Type: structs.URL, Entries: []string{"*.office.com", "outlook.office.com"},
			}},
			expected: "modify /apm resource network-access NAL1 address-space-exclude-dns-name replace-all-with { *.office.com outlook.office.com }",
		},
		{
			name: "ipv4",
			req: structs.ApplyRequest{List: "NAL1", Payload: structs.Payload{
				Type: structs.IPv4, Entries: []string{"13.107.6.152/31", "40.96.0.0/13"},
			}},
			expected: "modify /apm resource network-access NAL1 address-space-exclude-subnet { {subnet 13.107.6.152/31 } {subnet 40.96.0.0/13 } }",
		},
		{
			name: "ipv6",
			req: structs.ApplyRequest{List: "NAL2", Payload: structs.Payload{
				Type: structs.IPv6, Entries: []string{"2603:1006::/40"},
			}},
			expected: "modify /apm resource network-access NAL2 ipv6-address-space-exclude-subnet { {subnet 2603:1006::/40 } }",
		},
		{
			name:     "empty ipv4 clears the list",
			req:      structs.ApplyRequest{List: "NAL1", Payload: structs.Payload{Type: structs.IPv4}},
			expected: "modify /apm resource network-access NAL1 address-space-exclude-subnet {  }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ApplyArgs(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, strings.Join(args, " "))
		})
	}
}

func TestApplyArgsRejectsBadRequests(t *testing.T) {
	_, err := ApplyArgs(structs.ApplyRequest{List: "NAL1", Payload: structs.Payload{Type: "fqdn"}})
	require.Error(t, err)

	_, err = ApplyArgs(structs.ApplyRequest{Payload: structs.Payload{Type: structs.URL}})
	require.Error(t, err)
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		output   string
		expected bool
	}{
		{"cm failover-status {\n    color green\n    status ACTIVE\n}", true},
		{"cm failover-status {\n    color gray\n    status STANDBY\n}", false},
		{"", false},
	}

	for _, tt := range tests {
		executor := &recordingExecutor{output: tt.output}
		active, err := NewSession("", executor).IsActive(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tt.expected, active)
		assert.Equal(t, []string{"tmsh", "show", "/cm", "failover-status", "field-fmt"}, executor.calls[0])
	}
}

func TestCommandFailure(t *testing.T) {
	executor := &recordingExecutor{output: "01020036:3: The requested profile was not found.", err: errors.New("exit status 1")}
	session := NewSession("/usr/bin/tmsh", executor)

	err := session.RegenerateProfile(context.Background(), "AP1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommandFailed))
	assert.Contains(t, err.Error(), "was not found")
	assert.Equal(t, []string{"/usr/bin/tmsh", "modify", "/apm", "profile", "access", "AP1", "generation-action", "increment"}, executor.calls[0])

	_, err = session.IsActive(context.Background())
	require.Error(t, err)
}

func TestConfigSyncAndApply(t *testing.T) {
	executor := &recordingExecutor{}
	session := NewSession("", executor)

	require.NoError(t, session.ConfigSync(context.Background(), "device-group1"))
	require.NoError(t, session.Apply(context.Background(), structs.ApplyRequest{
		List: "NAL1", Payload: structs.Payload{Type: structs.IPv4, Entries: []string{"1.1.1.1/32"}},
	}))

	require.Len(t, executor.calls, 2)
	assert.Equal(t, []string{"tmsh", "run", "cm", "config-sync", "to-group", "device-group1"}, executor.calls[0])
	assert.Equal(t, "{subnet 1.1.1.1/32 }", executor.calls[1][len(executor.calls[1])-2])
}
