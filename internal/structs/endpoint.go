package structs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EndpointRecord is one entry of the provider's endpoint catalog.
type EndpointRecord struct {
	ID          RecordID `json:"id"`
	ServiceArea string   `json:"serviceArea"`
	Category    Category `json:"category"`
	Required    bool     `json:"required"`
	URLs        []string `json:"urls,omitempty"`
	AllowURLs   []string `json:"allowUrls,omitempty"`
	DefaultURLs []string `json:"defaultUrls,omitempty"`
	IPs         []string `json:"ips,omitempty"`
}

// VersionRecord is one entry of the provider's version document.
type VersionRecord struct {
	Instance string `json:"instance,omitempty"`
	Latest   string `json:"latest,omitempty"`
}

// RecordID is opaque. The provider publishes numbers today but strings are accepted too.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}

	var strVal string
	if err := json.Unmarshal(trimmed, &strVal); err == nil {
		*id = RecordID(strVal)
		return nil
	}

	var numVal json.Number
	if err := json.Unmarshal(trimmed, &numVal); err == nil {
		*id = RecordID(numVal.String())
		return nil
	}

	return fmt.Errorf("unsupported id value: %s", string(trimmed))
}
