package structs

import "strings"

// FilterConfig is the operator-supplied filter and target configuration.
// A run takes a copy and never mutates it.
type FilterConfig struct {
	EndpointSet                   string
	ServiceAreas                  []string
	CategoryThreshold             CategoryThreshold
	RequiredOnly                  bool
	RecordTypes                   []RecordType
	ExcludeURLSuffixes            []string
	ExcludeIPs                    []string
	IPExclusionMode               IPExclusionMode
	AdditionalURLs                []string
	AdditionalIPv4                []string
	AdditionalIPv6                []string
	ForceRefresh                  bool
	TargetLists                   []string
	AccessProfiles                []string
	HAEnabled                     bool
	DeviceGroup                   string
	RollbackVersionOnFetchFailure bool
}

func (c FilterConfig) Wants(t RecordType) bool {
	for _, rt := range c.RecordTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// InterestedIn matches service areas case-sensitively, as the provider publishes them.
func (c FilterConfig) InterestedIn(serviceArea string) bool {
	for _, area := range c.ServiceAreas {
		if strings.TrimSpace(area) == serviceArea {
			return true
		}
	}
	return false
}

type ModuleConfig struct {
	Fields []Element `json:"fields"`
}

type Element struct {
	Label            string      `json:"label"`
	Type             ElementType `json:"type"`
	ExpectedJsonName string      `json:"expected_json_name"`
	Rationale        string      `json:"rationale"`
	Value            interface{} `json:"value"`
	PossibleValues   []string    `json:"possible_values"`
	Required         bool        `json:"required"`
}

type PostedModuleConfig struct {
	Values map[string]interface{} `json:"values"`
}
