package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"o365sync/internal/structs"
)

func TestResolveUnionAndDedupe(t *testing.T) {
	candidates := Candidates{
		URLs: []string{"b.com", "a.com", "b.com"},
		IPv4: []string{"52.96.0.0/14", "13.107.6.152/31", "52.96.0.0/14"},
		IPv6: []string{"2603:1006::/40"},
	}
	add := Additions{
		URLs: []string{"a.com", "c.com", " "},
		IPv4: []string{"131.253.33.215/32"},
		IPv6: []string{"2603:1006::/40", "2620:1ec:a92::152/128"},
	}

	resolved := Resolve(candidates, add, Exclusions{})

	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, resolved.URLs)
	assert.Equal(t, []string{"13.107.6.152/31", "131.253.33.215/32", "52.96.0.0/14"}, resolved.IPv4)
	assert.Equal(t, []string{"2603:1006::/40", "2620:1ec:a92::152/128"}, resolved.IPv6)
}

func TestResolveURLSuffixExclusion(t *testing.T) {
	candidates := Candidates{URLs: []string{
		"a.symcd.com", "a.symcdx.com", ".symcd.com", "platform.linkedin.com", "www.linkedin.com",
	}}
	ex := Exclusions{URLSuffixes: []string{".symcd.com", "platform.linkedin.com"}}

	resolved := Resolve(candidates, Additions{}, ex)

	assert.Equal(t, []string{"a.symcdx.com", "www.linkedin.com"}, resolved.URLs)
}

func TestResolveExclusionAppliesToAdditions(t *testing.T) {
	ex := Exclusions{URLSuffixes: []string{".digicert.com"}, IPs: []string{"10.0.0.0/8"}}
	add := Additions{URLs: []string{"ocsp.digicert.com"}, IPv4: []string{"10.0.0.0/8"}}

	resolved := Resolve(Candidates{}, add, ex)

	assert.Empty(t, resolved.URLs)
	assert.Empty(t, resolved.IPv4)
}

func TestResolveIPSuffixQuirk(t *testing.T) {
	candidates := Candidates{
		IPv4: []string{"191.234.140.0/22", "1.0.0.0/8", "11.0.0.0/8", "21.0.0.0/16"},
		IPv6: []string{"2620:1ec:a92::152/128", "2603:1006::/40"},
	}
	ex := Exclusions{IPs: []string{"191.234.140.0/22", "1.0.0.0/8", "2620:1ec:a92::152/128"}}

	resolved := Resolve(candidates, Additions{}, ex)

	// "11.0.0.0/8" ends with "1.0.0.0/8" and is removed too.
	assert.Equal(t, []string{"21.0.0.0/16"}, resolved.IPv4)
	assert.Equal(t, []string{"2603:1006::/40"}, resolved.IPv6)
}

func TestResolveIPCIDRMode(t *testing.T) {
	candidates := Candidates{
		IPv4: []string{"1.0.0.0/8", "11.0.0.0/8", "1.2.3.4", "5.5.5.5/32", "weird"},
		IPv6: []string{"2620:01ec:0a92::0152/128", "2603:1006::/40"},
	}
	ex := Exclusions{
		IPMode: structs.CIDRMatch,
		IPs:    []string{"1.0.0.0/8", "1.2.3.4/32", "5.5.5.5", "weird", "2620:1ec:a92::152/128"},
	}

	resolved := Resolve(candidates, Additions{}, ex)

	assert.Equal(t, []string{"11.0.0.0/8"}, resolved.IPv4)
	assert.Equal(t, []string{"2603:1006::/40"}, resolved.IPv6)
}

func TestResolveIsIdempotent(t *testing.T) {
	candidates := Candidates{
		URLs: []string{"z.com", "a.symcd.com", "m.com", "z.com"},
		IPv4: []string{"52.96.0.0/14", "13.107.6.152/31", "52.96.0.0/14"},
		IPv6: []string{"2603:1006::/40"},
	}
	first := Resolve(candidates, Additions{URLs: []string{"b.com"}}, Exclusions{URLSuffixes: []string{".symcd.com"}})
	second := Resolve(Candidates{URLs: first.URLs, IPv4: first.IPv4, IPv6: first.IPv6}, Additions{}, Exclusions{})

	assert.Equal(t, first, second)
}

func TestResolveForIgnoresUnrequestedAdditions(t *testing.T) {
	cfg := structs.FilterConfig{
		RecordTypes:    []structs.RecordType{structs.IPv4},
		AdditionalURLs: []string{"extra.com"},
		AdditionalIPv4: []string{"131.253.33.215/32"},
		AdditionalIPv6: []string{"2603:1096:400::/40"},
	}

	resolved := ResolveFor(Candidates{}, cfg)

	assert.Empty(t, resolved.URLs)
	assert.Equal(t, []string{"131.253.33.215/32"}, resolved.IPv4)
	assert.Empty(t, resolved.IPv6)
}
