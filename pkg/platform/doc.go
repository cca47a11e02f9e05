// Package platform is the chat-platform collaborator: it reads a
// member's current roles, lists the roles that exist in a guild, and
// applies role changes through the platform's bot API.
//
// The engine never talks to the platform directly; it consumes this
// package through the sync.Platform interface, so tests and other
// deployments can substitute their own implementation.
package platform
