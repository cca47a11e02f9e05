// Package attribute is the typed boundary over identity-provider
// attribute records.
//
// Identity providers assert attributes as a loose key to
// value-or-list-of-values shape. Record converts that shape into an
// ordered sequence of strings per key at ingestion time, so the rest
// of the engine never handles the untyped form. Matching is done on
// lower-cased values; original casing is kept for display and audit.
package attribute
