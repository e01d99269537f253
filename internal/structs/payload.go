package structs

import "strings"

// ResolvedExclusionSet is the deduplicated, filtered and sorted result of one run.
type ResolvedExclusionSet struct {
	URLs []string
	IPv4 []string
	IPv6 []string
}

func (s ResolvedExclusionSet) Entries(t RecordType) []string {
	switch t {
	case URL:
		return s.URLs
	case IPv4:
		return s.IPv4
	case IPv6:
		return s.IPv6
	}
	return nil
}

// Payload is the full desired state of one record type on a target list.
type Payload struct {
	Type    RecordType
	Entries []string
}

// Text serialises the payload for the device. URLs are space delimited,
// subnets are wrapped as "{subnet <cidr> }" tokens.
func (p Payload) Text() string {
	if p.Type == URL {
		return strings.Join(p.Entries, " ")
	}
	tokens := make([]string, 0, len(p.Entries))
	for _, entry := range p.Entries {
		tokens = append(tokens, "{subnet "+entry+" }")
	}
	return strings.Join(tokens, " ")
}

// ApplyRequest replaces the entries of one record type on one target list.
type ApplyRequest struct {
	List    string
	Payload Payload
}
