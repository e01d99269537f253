package engine

import (
	"sort"
	"strings"

	"o365sync/internal/structs"
)

// Render builds one full-replacement payload per requested record type.
// URLs are lowercased and deduplicated after lowercasing. Entries are sorted
// so equal sets always render to identical payloads.
func Render(set structs.ResolvedExclusionSet, recordTypes []structs.RecordType) map[structs.RecordType]structs.Payload {
	payloads := make(map[structs.RecordType]structs.Payload, len(recordTypes))
	for _, t := range recordTypes {
		entries := set.Entries(t)
		if t == structs.URL {
			entries = lowerUnique(entries)
		} else {
			entries = append([]string(nil), entries...)
			sort.Strings(entries)
		}
		payloads[t] = structs.Payload{Type: t, Entries: entries}
	}
	return payloads
}

func lowerUnique(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		url = strings.ToLower(url)
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}
