package config

const (
	EndpointSet                   = "endpoint_set"
	ServiceAreas                  = "service_areas"
	CategoryThreshold             = "category_threshold"
	RequiredOnly                  = "required_only"
	RecordTypes                   = "record_types"
	ExcludeURLSuffixes            = "exclude_url_suffixes"
	ExcludeIPs                    = "exclude_ips"
	IPExclusionMode               = "ip_exclusion_mode"
	AdditionalURLs                = "additional_urls"
	AdditionalIPv4                = "additional_ipv4"
	AdditionalIPv6                = "additional_ipv6"
	ForceRefresh                  = "force_refresh"
	TargetLists                   = "target_lists"
	AccessProfiles                = "access_profiles"
	HAEnabled                     = "ha_enabled"
	DeviceGroup                   = "device_group"
	RollbackVersionOnFetchFailure = "rollback_version_on_fetch_failure"
	LogLevel                      = "log_level"
	LogFile                       = "log_file"
	StateDir                      = "state_dir"
	EndpointsURL                  = "endpoints_url"
	RequestTimeout                = "request_timeout"
	TmshPath                      = "tmsh_path"
	ListenAddress                 = "listen_address"
)

// Keys lists every configuration key the operator may set.
var Keys = []string{
	EndpointSet, ServiceAreas, CategoryThreshold, RequiredOnly, RecordTypes,
	ExcludeURLSuffixes, ExcludeIPs, IPExclusionMode, AdditionalURLs, AdditionalIPv4,
	AdditionalIPv6, ForceRefresh, TargetLists, AccessProfiles, HAEnabled, DeviceGroup,
	RollbackVersionOnFetchFailure, LogLevel, LogFile, StateDir, EndpointsURL,
	RequestTimeout, TmshPath, ListenAddress,
}

// DefaultExcludeURLSuffixes are certificate authority and OCSP hosts that
// should keep going through the tunnel.
var DefaultExcludeURLSuffixes = []string{
	".symcd.com", ".symcb.com", ".entrust.net", ".digicert.com", ".identrust.com",
	".verisign.net", ".globalsign.net", ".globalsign.com", ".geotrust.com",
	".omniroot.com", ".letsencrypt.org", ".public-trust.com", "platform.linkedin.com",
}
