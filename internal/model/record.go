package model

import "time"

// Action is what happened to one repository during a run.
type Action string

const (
	ActionCloned  Action = "cloned"
	ActionUpdated Action = "updated"
	ActionFailed  Action = "failed"
	ActionSkipped Action = "skipped"
)

// MirrorRecord is the journal entry for one repository in one run.
type MirrorRecord struct {
	RunID      string         `json:"run_id"`
	Owner      string         `json:"owner"`
	OwnerKind  OwnerKind      `json:"owner_kind"`
	Kind       CollectionKind `json:"kind"`
	Identifier string         `json:"identifier"`
	CloneURL   string         `json:"clone_url"`
	Path       string         `json:"path"`
	Action     Action         `json:"action"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Key identifies the repository of a record across runs.
func (r MirrorRecord) Key() string {
	return r.OwnerKind.PathSegment() + "/" + r.Owner + "/" + r.Kind.PathSegment() + "/" + r.Identifier
}

// Run is the journal entry for a whole invocation.
type Run struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitempty"`
	Cloned          int       `json:"cloned"`
	Updated         int       `json:"updated"`
	Failed          int       `json:"failed"`
	Skipped         int       `json:"skipped"`
	ListingFailures int       `json:"listing_failures"`
}

// Finished reports whether the run reached its end.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}
