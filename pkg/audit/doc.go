// Package audit emits structured audit events for role
// synchronization activity.
//
// Events are written in RFC5424 syslog format to stdout and, when
// AUDIT_DATABASE_URL is set, persisted to a PostgreSQL messages
// table. Every mutation of a member's roles, identity link change and
// cleanup run produces an event, so operators can reconstruct why a
// member holds the roles they do.
package audit
