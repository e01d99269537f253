package bigip

import "o365sync/internal/structs"

type Property = string

const (
	DefaultTmshPath = "tmsh"

	URLExcludeProperty  Property = "address-space-exclude-dns-name"
	IPv4ExcludeProperty Property = "address-space-exclude-subnet"
	IPv6ExcludeProperty Property = "ipv6-address-space-exclude-subnet"

	activeStatus = "status ACTIVE"
)

var excludeProperties = map[structs.RecordType]Property{
	structs.URL:  URLExcludeProperty,
	structs.IPv4: IPv4ExcludeProperty,
	structs.IPv6: IPv6ExcludeProperty,
}
