// Package config provides configuration management for the role sync service.
//
// This package handles loading and validating service configuration from
// environment variables and configuration files.
//
// # Configuration Sources
//
// Configuration is loaded from:
//
//   - Environment variables (primary)
//   - Configuration files (optional)
//
// # Key Configuration Options
//
//   - ROLESYNC_PLATFORM_URL: Community platform API base URL
//   - ROLESYNC_PLATFORM_TOKEN: Bot token for the platform API
//   - ROLESYNC_API_TOKEN_SECRET: Secret for signing API bearer tokens
//   - ROLESYNC_LOG_LEVEL: Logging verbosity
//   - DATABASE_URL: Database connection
//   - PORT: Server listen port
package config
