package structs

import (
	"fmt"
	"strconv"
	"strings"
)

type RecordType string
type Category string
type CategoryThreshold int
type IPExclusionMode string
type RunOutcome = string
type ElementType int

const (
	URL  RecordType = "url"
	IPv4 RecordType = "ipv4"
	IPv6 RecordType = "ipv6"

	Optimize Category = "Optimize"
	Allow    Category = "Allow"
	Default  Category = "Default"

	// NeverSynced is stored when no usable version has been persisted yet.
	NeverSynced = "1970010200"

	SuffixMatch IPExclusionMode = "suffix"
	CIDRMatch   IPExclusionMode = "cidr"

	Standby     RunOutcome = "standby"
	UpToDate    RunOutcome = "up_to_date"
	Applied     RunOutcome = "applied"
	FetchFailed RunOutcome = "fetch_failed"
	Failed      RunOutcome = "failed"
)

const (
	OptimizeOnly CategoryThreshold = iota
	OptimizeAllow
	AllCategories
)

const (
	Text ElementType = iota + 1
	Select
	Radio
	Number
	Password
	Disabled
)

// RecordTypes lists every record type in the order they are applied.
var RecordTypes = []RecordType{URL, IPv4, IPv6}

func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(strings.ToLower(strings.TrimSpace(s))) {
	case URL:
		return URL, nil
	case IPv4:
		return IPv4, nil
	case IPv6:
		return IPv6, nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// rank orders categories Optimize < Allow < Default. Unknown categories rank
// after Default so only the all-categories tier admits them.
func (c Category) rank() int {
	switch c {
	case Optimize:
		return 0
	case Allow:
		return 1
	case Default:
		return 2
	}
	return 3
}

// Admits reports whether a record of category c passes the threshold.
func (t CategoryThreshold) Admits(c Category) bool {
	if t == AllCategories {
		return true
	}
	return c.rank() <= int(t)
}

func (t CategoryThreshold) String() string {
	switch t {
	case OptimizeOnly:
		return "optimize"
	case OptimizeAllow:
		return "allow"
	case AllCategories:
		return "all"
	}
	return strconv.Itoa(int(t))
}

// ParseCategoryThreshold accepts the tier names or the numeric 0/1/2 form.
func ParseCategoryThreshold(s string) (CategoryThreshold, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "optimize", "0":
		return OptimizeOnly, nil
	case "allow", "1":
		return OptimizeAllow, nil
	case "all", "default", "2":
		return AllCategories, nil
	}
	return 0, fmt.Errorf("unknown category threshold %q", s)
}

func ParseIPExclusionMode(s string) (IPExclusionMode, error) {
	switch IPExclusionMode(strings.ToLower(strings.TrimSpace(s))) {
	case SuffixMatch, "":
		return SuffixMatch, nil
	case CIDRMatch:
		return CIDRMatch, nil
	}
	return "", fmt.Errorf("unknown ip exclusion mode %q", s)
}
