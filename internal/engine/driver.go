package engine

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"o365sync/internal/channel"
	"o365sync/internal/metrics"
	"o365sync/internal/state"
	"o365sync/internal/structs"
)

// StateStore persists the client identifier and the last applied version.
type StateStore interface {
	LoadOrCreateClientID() (string, error)
	LoadLastVersion() (string, error)
	SaveLastVersion(token string) error
	Lock() (func(), error)
}

// Catalog fetches the provider's version marker and endpoint catalog.
type Catalog interface {
	LatestVersion(ctx context.Context, endpointSet, clientID string) (string, error)
	Endpoints(ctx context.Context, endpointSet, clientID string) ([]structs.EndpointRecord, error)
}

// Device applies rendered payloads to the target system.
type Device interface {
	IsActive(ctx context.Context) (bool, error)
	Apply(ctx context.Context, req structs.ApplyRequest) error
	RegenerateProfile(ctx context.Context, profile string) error
	ConfigSync(ctx context.Context, group string) error
}

type Driver struct {
	store   StateStore
	catalog Catalog
	device  Device

	mu   sync.Mutex
	last *structs.RunReport
}

func NewDriver(store StateStore, catalog Catalog, device Device) *Driver {
	return &Driver{
		store:   store,
		catalog: catalog,
		device:  device,
	}
}

// LastReport returns the report of the most recent run, if any.
func (d *Driver) LastReport() (structs.RunReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return structs.RunReport{}, false
	}
	return *d.last, true
}

// RunLocked takes the per-node run lock around Run.
func (d *Driver) RunLocked(ctx context.Context, cfg structs.FilterConfig) (structs.RunReport, error) {
	release, err := d.store.Lock()
	if err != nil {
		return structs.RunReport{}, errors.Wrap(err, "error acquiring run lock")
	}
	defer release()

	return d.Run(ctx, cfg)
}

// Run executes one reconciliation: role check, version gate, catalog fetch,
// classification, resolution, rendering and apply to every target list.
// Only a failed catalog fetch or state store failure is returned as an error;
// per-call device failures are counted in the report.
func (d *Driver) Run(ctx context.Context, cfg structs.FilterConfig) (structs.RunReport, error) {
	report, err := d.run(ctx, cfg)

	metrics.Runs.WithLabelValues(report.Outcome).Inc()
	d.mu.Lock()
	d.last = &report
	d.mu.Unlock()

	return report, err
}

func (d *Driver) run(ctx context.Context, cfg structs.FilterConfig) (structs.RunReport, error) {
	report := structs.RunReport{}

	// Check that this node is standalone or the active member.
	if !d.isActive(ctx, cfg) {
		logrus.Info("This BIG-IP is HA STANDBY. Aborting O365 update.")
		report.Outcome = structs.Standby
		return report, nil
	}
	logrus.Info("This BIG-IP is standalone or HA ACTIVE. Initiating O365 update.")

	clientID, err := d.store.LoadOrCreateClientID()
	if err != nil {
		report.Outcome = structs.Failed
		return report, errors.Wrap(err, "error loading client id")
	}

	previous, err := d.store.LoadLastVersion()
	if err != nil {
		report.Outcome = structs.Failed
		return report, errors.Wrap(err, "error loading last version")
	}
	report.PreviousVersion = previous

	// Version check. A failed lookup proceeds as if the version changed.
	latest := d.latestVersion(ctx, cfg.EndpointSet, clientID)
	report.LatestVersion = latest

	saved := false
	if latest != "" && latest != previous {
		if err := d.store.SaveLastVersion(latest); err != nil {
			logrus.Error("There was an error saving the latest VERSION: ", err)
		} else {
			saved = true
		}
	}

	logrus.Debug("Previous VERSION is ", previous)
	logrus.Debug("Latest VERSION is ", latest)

	if !ShouldSync(previous, latest, cfg.ForceRefresh) {
		logrus.Info("You already have the latest O365 URL/IP Address list: ", latest, ". Aborting operation.")
		report.Outcome = structs.UpToDate
		return report, nil
	}

	// Fetch the catalog. There is no safe fallback, so a failure ends the run.
	records, err := d.catalog.Endpoints(ctx, cfg.EndpointSet, clientID)
	if err != nil {
		logrus.Error("ENDPOINTS request to the web service failed. Aborting operation: ", err)
		if cfg.RollbackVersionOnFetchFailure && saved {
			if rbErr := d.store.SaveLastVersion(previous); rbErr != nil {
				logrus.Error("There was an error restoring the previous VERSION: ", rbErr)
			} else {
				logrus.Info("Restored previous VERSION ", previous, " so the next run retries.")
			}
		}
		report.Outcome = structs.FetchFailed
		return report, errors.Wrap(err, "error fetching endpoints")
	}
	logrus.Debug("ENDPOINTS request to the web service was successful.")

	resolved := ResolveFor(Classify(records, cfg), cfg)
	payloads := Render(resolved, cfg.RecordTypes)

	logrus.Info("Number of unique ENDPOINTS to import...")
	report.Counts = make(map[structs.RecordType]int)
	for _, t := range structs.RecordTypes {
		if !cfg.Wants(t) {
			continue
		}
		report.Counts[t] = len(payloads[t].Entries)
		metrics.ResolvedEntries.WithLabelValues(string(t)).Set(float64(len(payloads[t].Entries)))
		logrus.WithField("record_type", t).Info(len(payloads[t].Entries), " entries")
	}

	d.apply(ctx, cfg, payloads, &report)

	for _, profile := range cfg.AccessProfiles {
		if err := d.device.RegenerateProfile(ctx, profile); err != nil {
			logrus.Error("There was an error applying access profile ", profile, ": ", err)
			report.ProfileFailures++
		}
	}

	if cfg.HAEnabled {
		logrus.Info("Initiating Config-Sync.")
		if err := d.device.ConfigSync(ctx, cfg.DeviceGroup); err != nil {
			logrus.Error("There was an error running config-sync to ", cfg.DeviceGroup, ": ", err)
			report.ConfigSyncError = true
		}
	}

	report.Outcome = structs.Applied
	logrus.WithFields(logrus.Fields{
		"apply_attempts": report.ApplyAttempts,
		"apply_failures": report.ApplyFailures,
	}).Info("Completed O365 URL/IP address update process.")

	return report, nil
}

// apply fans out every payload to every target list. A failed call does not
// stop the remaining ones.
func (d *Driver) apply(ctx context.Context, cfg structs.FilterConfig, payloads map[structs.RecordType]structs.Payload, report *structs.RunReport) {
	for _, list := range cfg.TargetLists {
		for _, t := range structs.RecordTypes {
			payload, ok := payloads[t]
			if !ok {
				continue
			}
			report.ApplyAttempts++

			err := d.device.Apply(ctx, structs.ApplyRequest{List: list, Payload: payload})
			if err != nil {
				report.ApplyFailures++
				metrics.ApplyCalls.WithLabelValues(string(t), "failure").Inc()
				logrus.Error("There was an error updating ", list, " with the ", t, " list: ", err)
				continue
			}
			metrics.ApplyCalls.WithLabelValues(string(t), "success").Inc()
			logrus.Debug("Updated ", list, " with latest O365 ", t, " list.")
		}
	}
}

func (d *Driver) isActive(ctx context.Context, cfg structs.FilterConfig) bool {
	if !cfg.HAEnabled {
		return true
	}
	active, err := d.device.IsActive(ctx)
	if err != nil {
		logrus.Warn("Could not determine failover status, treating node as standby: ", err)
		return false
	}
	return active
}

// latestVersion returns "" when the lookup fails or yields no valid token.
func (d *Driver) latestVersion(ctx context.Context, endpointSet, clientID string) string {
	latest, err := d.catalog.LatestVersion(ctx, endpointSet, clientID)
	if err != nil {
		logrus.Info("VERSION request to the web service failed. Assuming VERSIONs did not match, and proceed: ", err)
		return ""
	}
	logrus.Debug("VERSION request to the web service was successful.")
	if !state.ValidVersion(latest) {
		if latest != "" {
			logrus.Warn("Ignoring malformed latest VERSION ", latest)
		}
		return ""
	}
	return latest
}

// HandleRequests runs the driver for every request received on
// channel.Requests until ctx is done. snapshot supplies the configuration
// for each run.
func (d *Driver) HandleRequests(ctx context.Context, snapshot func() structs.FilterConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		case request := <-channel.Requests:
			cfg := snapshot()
			cfg.ForceRefresh = cfg.ForceRefresh || request.Force

			report, err := d.RunLocked(ctx, cfg)
			if err != nil {
				logrus.Error("Run failed: ", err)
				continue
			}
			if report.Failed() {
				logrus.Warn("Run completed with failures: ", report.ApplyFailures, " failed apply calls")
			}
		}
	}
}
