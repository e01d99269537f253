package engine

import (
	"net/netip"
	"sort"
	"strings"

	"o365sync/internal/structs"
)

// Exclusions are the administrator-supplied removals applied by Resolve.
type Exclusions struct {
	URLSuffixes []string
	IPs         []string
	IPMode      structs.IPExclusionMode
}

// Additions are the administrator-supplied entries merged into the candidates.
type Additions struct {
	URLs []string
	IPv4 []string
	IPv6 []string
}

// Resolve merges candidates with additions, drops excluded entries,
// deduplicates and sorts every set.
func Resolve(candidates Candidates, add Additions, ex Exclusions) structs.ResolvedExclusionSet {
	return structs.ResolvedExclusionSet{
		URLs: resolveURLs(union(candidates.URLs, add.URLs), ex.URLSuffixes),
		IPv4: resolveIPs(union(candidates.IPv4, add.IPv4), ex.IPs, ex.IPMode),
		IPv6: resolveIPs(union(candidates.IPv6, add.IPv6), ex.IPs, ex.IPMode),
	}
}

// ResolveFor resolves only the record types the configuration asks for.
func ResolveFor(candidates Candidates, cfg structs.FilterConfig) structs.ResolvedExclusionSet {
	add := Additions{}
	if cfg.Wants(structs.URL) {
		add.URLs = cfg.AdditionalURLs
	}
	if cfg.Wants(structs.IPv4) {
		add.IPv4 = cfg.AdditionalIPv4
	}
	if cfg.Wants(structs.IPv6) {
		add.IPv6 = cfg.AdditionalIPv6
	}
	return Resolve(candidates, add, Exclusions{
		URLSuffixes: cfg.ExcludeURLSuffixes,
		IPs:         cfg.ExcludeIPs,
		IPMode:      cfg.IPExclusionMode,
	})
}

func union(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, entry := range list {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			set[entry] = struct{}{}
		}
	}
	return set
}

func resolveURLs(set map[string]struct{}, suffixes []string) []string {
	return sortedKeys(set, func(url string) bool {
		for _, suffix := range suffixes {
			if suffix != "" && strings.HasSuffix(url, suffix) {
				return true
			}
		}
		return false
	})
}

func resolveIPs(set map[string]struct{}, excluded []string, mode structs.IPExclusionMode) []string {
	matches := suffixMatch
	if mode == structs.CIDRMatch {
		matches = prefixEqual
	}
	return sortedKeys(set, func(ip string) bool {
		for _, x := range excluded {
			if x != "" && matches(ip, x) {
				return true
			}
		}
		return false
	})
}

// suffixMatch compares the literal strings, so an exclusion of "1.0.0.0/8"
// also removes "11.0.0.0/8".
func suffixMatch(ip, excluded string) bool {
	return strings.HasSuffix(ip, excluded)
}

// prefixEqual compares parsed prefixes, falling back to string equality when
// either side does not parse.
func prefixEqual(ip, excluded string) bool {
	a, errA := parsePrefix(ip)
	b, errB := parsePrefix(excluded)
	if errA != nil || errB != nil {
		return ip == excluded
	}
	return a == b
}

func parsePrefix(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func sortedKeys(set map[string]struct{}, drop func(string) bool) []string {
	out := make([]string, 0, len(set))
	for entry := range set {
		if drop(entry) {
			continue
		}
		out = append(out, entry)
	}
	sort.Strings(out)
	return out
}
