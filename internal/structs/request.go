package structs

// RunRequest triggers a reconciliation run through the HTTP surface.
type RunRequest struct {
	Force bool `json:"force"`
}

// RunReport summarises one reconciliation run.
type RunReport struct {
	Outcome         RunOutcome         `json:"outcome"`
	PreviousVersion string             `json:"previous_version"`
	LatestVersion   string             `json:"latest_version"`
	Counts          map[RecordType]int `json:"counts,omitempty"`
	ApplyAttempts   int                `json:"apply_attempts"`
	ApplyFailures   int                `json:"apply_failures"`
	ProfileFailures int                `json:"profile_failures"`
	ConfigSyncError bool               `json:"config_sync_error"`
}

func (r RunReport) Failed() bool {
	return r.Outcome == FetchFailed || r.Outcome == Failed || r.ApplyFailures > 0 || r.ProfileFailures > 0 || r.ConfigSyncError
}
