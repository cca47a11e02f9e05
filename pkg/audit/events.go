package audit

import (
	"fmt"
	"strings"
)

// SyncEvent is emitted for every member synchronization attempt.
type SyncEvent struct {
	GuildID  string
	MemberID string
	Outcome  string
	Added    []string
	Removed  []string
	RunID    string
	ErrorMsg string
}

func (e SyncEvent) MessageID() string { return "sync" }

func (e SyncEvent) Severity() Severity {
	if e.ErrorMsg != "" {
		return SeverityWarning
	}
	return SeverityInfo
}

func (e SyncEvent) Facility() int { return FacilityAuth }

func (e SyncEvent) Message() string {
	if e.ErrorMsg != "" {
		return fmt.Sprintf("rolesync:member:%s failed to sync in guild %s: %s", e.MemberID, e.GuildID, e.ErrorMsg)
	}
	return fmt.Sprintf("rolesync:member:%s synced in guild %s (%s)", e.MemberID, e.GuildID, e.Outcome)
}

func (e SyncEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"guild":  e.GuildID,
			"member": e.MemberID,
		},
		SDIDSync: {
			"outcome": e.Outcome,
		},
	}
	if len(e.Added) > 0 {
		sd[SDIDSync]["added"] = strings.Join(e.Added, ",")
	}
	if len(e.Removed) > 0 {
		sd[SDIDSync]["removed"] = strings.Join(e.Removed, ",")
	}
	if e.RunID != "" {
		sd[SDIDRun] = map[string]string{"id": e.RunID}
	}
	if e.ErrorMsg != "" {
		sd[SDIDSync]["error"] = e.ErrorMsg
	}
	return sd
}

// BulkSyncEvent is emitted when a guild-wide synchronization run completes.
type BulkSyncEvent struct {
	GuildID   string
	RunID     string
	Synced    int
	Unchanged int
	Skipped   int
	Failed    int
}

func (e BulkSyncEvent) MessageID() string { return "bulk-sync" }

func (e BulkSyncEvent) Severity() Severity {
	if e.Failed > 0 {
		return SeverityWarning
	}
	return SeverityInfo
}

func (e BulkSyncEvent) Facility() int { return FacilityAuth }

func (e BulkSyncEvent) Message() string {
	return fmt.Sprintf("rolesync:guild:%s bulk sync complete: %d synced, %d unchanged, %d skipped, %d failed",
		e.GuildID, e.Synced, e.Unchanged, e.Skipped, e.Failed)
}

func (e BulkSyncEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"guild": e.GuildID,
		},
		SDIDRun: {
			"id":        e.RunID,
			"synced":    fmt.Sprintf("%d", e.Synced),
			"unchanged": fmt.Sprintf("%d", e.Unchanged),
			"skipped":   fmt.Sprintf("%d", e.Skipped),
			"failed":    fmt.Sprintf("%d", e.Failed),
		},
	}
}

// LinkEvent is emitted when a verified identity record is stored for a member.
type LinkEvent struct {
	MemberID string
	Subject  string
	ErrorMsg string
}

func (e LinkEvent) MessageID() string { return "link" }

func (e LinkEvent) Severity() Severity {
	if e.ErrorMsg != "" {
		return SeverityWarning
	}
	return SeverityNotice
}

func (e LinkEvent) Facility() int { return FacilityAuthPriv }

func (e LinkEvent) Message() string {
	if e.ErrorMsg != "" {
		return fmt.Sprintf("rolesync:member:%s failed to link identity %s: %s", e.MemberID, e.Subject, e.ErrorMsg)
	}
	return fmt.Sprintf("rolesync:member:%s linked identity %s", e.MemberID, e.Subject)
}

func (e LinkEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"member":  e.MemberID,
			"subject": e.Subject,
		},
		SDIDAction: {
			"operation": "link",
		},
	}
	if e.ErrorMsg != "" {
		sd[SDIDAction]["error"] = e.ErrorMsg
	}
	return sd
}

// UnlinkEvent is emitted when a member's verified identity record is removed.
type UnlinkEvent struct {
	MemberID string
	Reason   string
}

func (e UnlinkEvent) MessageID() string { return "unlink" }

func (e UnlinkEvent) Severity() Severity { return SeverityNotice }

func (e UnlinkEvent) Facility() int { return FacilityAuthPriv }

func (e UnlinkEvent) Message() string {
	return fmt.Sprintf("rolesync:member:%s identity unlinked (%s)", e.MemberID, e.Reason)
}

func (e UnlinkEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"member": e.MemberID,
		},
		SDIDAction: {
			"operation": "unlink",
			"reason":    e.Reason,
		},
	}
}

// CleanupEvent is emitted when the expiration sweep removes stale identities.
type CleanupEvent struct {
	Removed  int
	ErrorMsg string
}

func (e CleanupEvent) MessageID() string { return "cleanup" }

func (e CleanupEvent) Severity() Severity {
	if e.ErrorMsg != "" {
		return SeverityError
	}
	return SeverityInfo
}

func (e CleanupEvent) Facility() int { return FacilityAuth }

func (e CleanupEvent) Message() string {
	if e.ErrorMsg != "" {
		return fmt.Sprintf("rolesync:cleanup failed: %s", e.ErrorMsg)
	}
	return fmt.Sprintf("rolesync:cleanup removed %d expired identities", e.Removed)
}

func (e CleanupEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAction: {
			"operation": "cleanup",
			"removed":   fmt.Sprintf("%d", e.Removed),
		},
	}
	if e.ErrorMsg != "" {
		sd[SDIDAction]["error"] = e.ErrorMsg
	}
	return sd
}
