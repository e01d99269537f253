package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"o365sync/internal/feed"
	"o365sync/internal/structs"
)

const defaultConfigPath = "./config/config.yml"

var ErrInvalidConfig = errors.New("invalid configuration")

var (
	mu      sync.RWMutex
	current structs.FilterConfig
)

func SetDefaults() {
	viper.SetDefault(EndpointSet, "Worldwide")
	viper.SetDefault(ServiceAreas, []string{"Common", "Exchange", "SharePoint", "Skype"})
	viper.SetDefault(CategoryThreshold, "optimize")
	viper.SetDefault(RequiredOnly, true)
	viper.SetDefault(RecordTypes, []string{string(structs.IPv4)})
	viper.SetDefault(ExcludeURLSuffixes, DefaultExcludeURLSuffixes)
	viper.SetDefault(ExcludeIPs, []string{})
	viper.SetDefault(IPExclusionMode, string(structs.SuffixMatch))
	viper.SetDefault(AdditionalURLs, []string{})
	viper.SetDefault(AdditionalIPv4, []string{})
	viper.SetDefault(AdditionalIPv6, []string{})
	viper.SetDefault(ForceRefresh, false)
	viper.SetDefault(TargetLists, []string{"MyNetworkAccessList"})
	viper.SetDefault(AccessProfiles, []string{"MyAccessProfile"})
	viper.SetDefault(HAEnabled, false)
	viper.SetDefault(DeviceGroup, "device-group1")
	viper.SetDefault(RollbackVersionOnFetchFailure, false)
	viper.SetDefault(LogLevel, 1)
	viper.SetDefault(LogFile, "/var/log/o365_update")
	viper.SetDefault(StateDir, "/shared/o365")
	viper.SetDefault(EndpointsURL, feed.DefaultEndpointsURL)
	viper.SetDefault(RequestTimeout, "60s")
	viper.SetDefault(TmshPath, "tmsh")
	viper.SetDefault(ListenAddress, "0.0.0.0:8080")
}

// InitConfig reads the configuration file, creating an empty one if it does
// not exist, and reloads the filter configuration whenever the file changes.
func InitConfig(path string) error {
	if path == "" {
		path = defaultConfigPath
	}

	// Check if config file exists. If not create.
	if _, err := os.Stat(path); err != nil {
		if err := createConfig(path); err != nil {
			return err
		}
	}

	SetDefaults()
	viper.SetConfigFile(path)

	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrap(err, "There was an error while trying to read the config")
	}

	if err := Reload(); err != nil {
		return err
	}

	viper.OnConfigChange(func(in fsnotify.Event) {
		logrus.Info("Configuration changed: ", in.Name)
		if valid, errStr := ValidateConfig(); !valid {
			logrus.Error("Ignoring invalid configuration change: ", errStr)
			return
		}
		if err := Reload(); err != nil {
			logrus.Error("There was an error reloading the configuration: ", err)
		}
	})
	viper.WatchConfig()

	return nil
}

func createConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "There was an error while creating the config directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "There was an error while creating the config file")
	}
	return f.Close()
}

// Reload rebuilds the filter configuration from viper.
func Reload() error {
	cfg, err := LoadFilterConfig()
	if err != nil {
		return err
	}
	mu.Lock()
	current = cfg
	mu.Unlock()
	return nil
}

// Snapshot returns the filter configuration for one run.
func Snapshot() structs.FilterConfig {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// LoadFilterConfig builds the filter configuration from the current viper values.
func LoadFilterConfig() (structs.FilterConfig, error) {
	threshold, err := structs.ParseCategoryThreshold(viper.GetString(CategoryThreshold))
	if err != nil {
		return structs.FilterConfig{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	mode, err := structs.ParseIPExclusionMode(viper.GetString(IPExclusionMode))
	if err != nil {
		return structs.FilterConfig{}, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	var recordTypes []structs.RecordType
	for _, s := range viper.GetStringSlice(RecordTypes) {
		rt, err := structs.ParseRecordType(s)
		if err != nil {
			return structs.FilterConfig{}, errors.Wrap(ErrInvalidConfig, err.Error())
		}
		recordTypes = append(recordTypes, rt)
	}

	return structs.FilterConfig{
		EndpointSet:                   strings.TrimSpace(viper.GetString(EndpointSet)),
		ServiceAreas:                  viper.GetStringSlice(ServiceAreas),
		CategoryThreshold:             threshold,
		RequiredOnly:                  viper.GetBool(RequiredOnly),
		RecordTypes:                   recordTypes,
		ExcludeURLSuffixes:            viper.GetStringSlice(ExcludeURLSuffixes),
		ExcludeIPs:                    viper.GetStringSlice(ExcludeIPs),
		IPExclusionMode:               mode,
		AdditionalURLs:                viper.GetStringSlice(AdditionalURLs),
		AdditionalIPv4:                viper.GetStringSlice(AdditionalIPv4),
		AdditionalIPv6:                viper.GetStringSlice(AdditionalIPv6),
		ForceRefresh:                  viper.GetBool(ForceRefresh),
		TargetLists:                   viper.GetStringSlice(TargetLists),
		AccessProfiles:                viper.GetStringSlice(AccessProfiles),
		HAEnabled:                     viper.GetBool(HAEnabled),
		DeviceGroup:                   strings.TrimSpace(viper.GetString(DeviceGroup)),
		RollbackVersionOnFetchFailure: viper.GetBool(RollbackVersionOnFetchFailure),
	}, nil
}

func GetRequestTimeout() time.Duration {
	timeout := viper.GetDuration(RequestTimeout)
	if timeout <= 0 {
		return 60 * time.Second
	}
	return timeout
}

func GetConfig() structs.ModuleConfig {
	data := structs.ModuleConfig{Fields: []structs.Element{
		{
			Label:            "Endpoint Set",
			Type:             structs.Select,
			ExpectedJsonName: EndpointSet,
			Rationale:        "Regional instance of the endpoint catalog to consume.",
			Value:            viper.GetString(EndpointSet),
			PossibleValues:   []string{"Worldwide", "USGovDoD", "USGovGCCHigh", "China", "Germany"},
			Required:         true,
		}, {
			Label:            "Service Areas",
			Type:             structs.Text,
			ExpectedJsonName: ServiceAreas,
			Rationale:        "Service areas whose endpoints are excluded from the tunnel.",
			Value:            viper.GetStringSlice(ServiceAreas),
			PossibleValues:   []string{"Common", "Exchange", "SharePoint", "Skype"},
			Required:         true,
		}, {
			Label:            "Categories",
			Type:             structs.Radio,
			ExpectedJsonName: CategoryThreshold,
			Rationale:        "Optimize only, Optimize and Allow, or all categories.",
			Value:            viper.GetString(CategoryThreshold),
			PossibleValues:   []string{"optimize", "allow", "all"},
			Required:         true,
		}, {
			Label:            "Required Only",
			Type:             structs.Radio,
			ExpectedJsonName: RequiredOnly,
			Rationale:        "Import only endpoints marked as required. Importing all endpoints includes non Office 365 hosts.",
			Value:            viper.GetBool(RequiredOnly),
			PossibleValues:   []string{"true", "false"},
			Required:         true,
		}, {
			Label:            "Record Types",
			Type:             structs.Select,
			ExpectedJsonName: RecordTypes,
			Rationale:        "Record types to update on the network access lists.",
			Value:            viper.GetStringSlice(RecordTypes),
			PossibleValues:   []string{string(structs.URL), string(structs.IPv4), string(structs.IPv6)},
			Required:         true,
		}, {
			Label:            "Excluded URL Suffixes",
			Type:             structs.Text,
			ExpectedJsonName: ExcludeURLSuffixes,
			Rationale:        "URLs ending with any of these values are not imported.",
			Value:            viper.GetStringSlice(ExcludeURLSuffixes),
			Required:         false,
		}, {
			Label:            "Excluded IPs",
			Type:             structs.Text,
			ExpectedJsonName: ExcludeIPs,
			Rationale:        "IPs not imported. Matched as string suffix unless the IP exclusion mode is cidr.",
			Value:            viper.GetStringSlice(ExcludeIPs),
			Required:         false,
		}, {
			Label:            "Network Access Lists",
			Type:             structs.Text,
			ExpectedJsonName: TargetLists,
			Rationale:        "Network access resources that receive the exclusion lists.",
			Value:            viper.GetStringSlice(TargetLists),
			Required:         true,
		}, {
			Label:            "Access Profiles",
			Type:             structs.Text,
			ExpectedJsonName: AccessProfiles,
			Rationale:        "Access profiles applied after the lists are updated.",
			Value:            viper.GetStringSlice(AccessProfiles),
			Required:         false,
		}, {
			Label:            "HA Device Group",
			Type:             structs.Text,
			ExpectedJsonName: DeviceGroup,
			Rationale:        "Sync-Failover device group. Used only when HA is enabled.",
			Value:            viper.GetString(DeviceGroup),
			Required:         false,
		},
	}}
	return data
}

// ValidateConfig checks the current viper values. The string explains the first problem found.
func ValidateConfig() (bool, string) {
	if _, err := LoadFilterConfig(); err != nil {
		return false, err.Error()
	}

	if strings.TrimSpace(viper.GetString(EndpointSet)) == "" {
		return false, "Endpoint Set field is empty."
	}
	if len(viper.GetStringSlice(RecordTypes)) == 0 {
		return false, "At least one record type must be selected."
	}
	if len(viper.GetStringSlice(TargetLists)) == 0 {
		return false, "At least one network access list is required."
	}
	if viper.GetBool(HAEnabled) && strings.TrimSpace(viper.GetString(DeviceGroup)) == "" {
		return false, "HA Device Group is required when HA is enabled."
	}

	// Validate endpoints URL value.
	endpointsURL := viper.GetString(EndpointsURL)
	validHTTP := strings.HasPrefix(endpointsURL, "http://")
	validHTTPS := strings.HasPrefix(endpointsURL, "https://")
	if !validHTTP && !validHTTPS {
		return false, "Endpoints URL must be a valid address beginning with http:// or https://"
	}
	if strings.HasSuffix(endpointsURL, "/") {
		return false, fmt.Sprintf("Endpoints URL must not end with trailing /. Correct format is %s.", feed.DefaultEndpointsURL)
	}

	if viper.GetInt(LogLevel) < 0 || viper.GetInt(LogLevel) > 2 {
		return false, "Log level must be 0 (none), 1 (normal) or 2 (verbose)."
	}

	return true, ""
}
