package sync

//go:generate go run github.com/dmarkham/enumer -type Outcome -transform snake -output outcome.gen.go

// Outcome classifies the result of a synchronization run.
type Outcome int

const (
	// Applied means role changes were computed and applied.
	Applied Outcome = iota
	// NoIdentityData means the member has no verified attribute
	// record. Expected for unverified members; not an error.
	NoIdentityData
	// NoChange means the member's roles already match their
	// attributes.
	NoChange
	// ApplyFailed means the platform rejected or timed out on the
	// mutation. Retryable; the run is idempotent given unchanged
	// inputs.
	ApplyFailed
	// MemberNotInGuild means the member has a verified record but is
	// not currently a guild member, so there is nothing to reconcile.
	MemberNotInGuild
)
