package engine

import (
	"strings"

	"o365sync/internal/structs"
)

// Candidates holds the raw, possibly duplicated, entries taken from the catalog.
type Candidates struct {
	URLs []string
	IPv4 []string
	IPv6 []string
}

// IsIPv6 uses the provider's discriminator: any colon means IPv6.
func IsIPv6(ip string) bool {
	return strings.Contains(ip, ":")
}

// Admits reports whether a record passes the category, required and service area gates.
func Admits(record structs.EndpointRecord, cfg structs.FilterConfig) bool {
	if !cfg.CategoryThreshold.Admits(record.Category) {
		return false
	}
	if cfg.RequiredOnly && !record.Required {
		return false
	}
	return cfg.InterestedIn(record.ServiceArea)
}

// Classify buckets the admitted records into URL, IPv4 and IPv6 candidates
// for the record types the configuration asks for.
func Classify(records []structs.EndpointRecord, cfg structs.FilterConfig) Candidates {
	var c Candidates

	wantURL := cfg.Wants(structs.URL)
	wantIPv4 := cfg.Wants(structs.IPv4)
	wantIPv6 := cfg.Wants(structs.IPv6)

	for _, record := range records {
		if !Admits(record, cfg) {
			continue
		}

		if wantURL {
			c.URLs = append(c.URLs, record.URLs...)
			c.URLs = append(c.URLs, record.AllowURLs...)
			c.URLs = append(c.URLs, record.DefaultURLs...)
		}

		if wantIPv4 || wantIPv6 {
			for _, ip := range record.IPs {
				if IsIPv6(ip) {
					if wantIPv6 {
						c.IPv6 = append(c.IPv6, ip)
					}
				} else if wantIPv4 {
					c.IPv4 = append(c.IPv4, ip)
				}
			}
		}
	}

	return c
}
