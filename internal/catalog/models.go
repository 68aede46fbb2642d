package catalog

import "time"

// ProviderRecord is one stored provider snapshot.
type ProviderRecord struct {
	ID          int64
	Name        string
	Namespace   string
	Version     string
	Description string
	Location    string
	Secure      bool
	Hash        string
	SyncedAt    time.Time
}

// UnitRecord is one stored unit. Definition holds the unit's record
// serialized back to its on-disk form.
type UnitRecord struct {
	ID         int64
	ProviderID int64
	Kind       string
	UnitID     string
	PartialID  string
	Origin     string
	Virtual    bool
	Definition string
}

// FileRecord is one entry of a provider's file inventory.
type FileRecord struct {
	ID         int64
	ProviderID int64
	Path       string
	Role       string
	Base       string
}

// ProblemRecord is one load problem kept for later inspection.
type ProblemRecord struct {
	ID         int64
	ProviderID int64
	Message    string
}
