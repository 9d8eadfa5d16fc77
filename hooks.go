package redcoll

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run on read paths.
type Hooks interface {
	// An identifier stored in a typed list did not resolve and was dropped
	// from a bulk read.
	StaleReference(listKey, id string)

	// A raw element could not be cast to the list's element type.
	// index is -1 for reads that are not positional.
	CastFailed(listKey string, index int64, err error)

	// A cached entity was deleted on read.
	// reason ∈ {"corrupt", "revision_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// Revision store errors. count is the number of keys involved.
	RevisionSnapshotError(count int, err error)
	RevisionBumpError(storageKey string, err error)

	// Both revision bump and delete failed during Invalidate.
	InvalidateOutage(id string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StaleReference(string, string)         {}
func (NopHooks) CastFailed(string, int64, error)       {}
func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) RevisionSnapshotError(int, error)      {}
func (NopHooks) RevisionBumpError(string, error)       {}
func (NopHooks) InvalidateOutage(string, error, error) {}
