// Package main provides rolesyncctl, the role synchronization service CLI.
//
// The service keeps community-platform roles in line with verified
// identity-provider attributes: a priority classification picks one
// exclusive role per member, a mapping table grants additional roles,
// and a dependency graph is enforced on every change.
//
// # Architecture
//
// The service is organized into several packages:
//
//   - pkg/server: HTTP API and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/sync: Synchronization engine orchestration
//   - pkg/roles: Role selection, dependency reconciliation
//   - pkg/attribute: Identity attribute records
//   - pkg/settings: Guild configuration documents
//   - pkg/platform: Community platform API client
//   - pkg/store: Persistence interfaces and gorm implementation
//   - pkg/db: Database connection utilities
//   - pkg/audit: Audit logging
//   - pkg/config: Service configuration management
//
// # Quick Start
//
//	# Run database migrations
//	rolesyncctl db migrate
//
//	# Apply a guild configuration document
//	rolesyncctl guild apply <guild> config.yml
//
//	# Start the server
//	rolesyncctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - ROLESYNC_PLATFORM_URL: Community platform API base URL
//   - ROLESYNC_PLATFORM_TOKEN: Bot token for the platform API
//   - ROLESYNC_API_TOKEN_SECRET: Secret for signing API bearer tokens
//   - ROLESYNC_LOG_LEVEL: Log level (debug, info, warn, error)
//   - PORT: Server port (default: 8080)
package main
