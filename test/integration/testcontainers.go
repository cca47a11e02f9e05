package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testTokenSecret signs API bearer tokens for the suite.
var testTokenSecret = []byte("integration-test-secret")

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	Platform    *FakePlatform
	HTTPClient  *http.Client

	InlineMode bool
	BinaryPath string

	server *ServerInstance
}

// NewTestContext starts a PostgreSQL testcontainer, runs the schema
// migrations and starts a fake platform API.
//
// Modes:
//   - Binary mode (default): set ROLESYNC_BINARY to the path of the rolesyncctl binary
//   - Inline mode: set ROLESYNC_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	inlineMode := os.Getenv("ROLESYNC_INLINE") == "1"
	binaryPath := os.Getenv("ROLESYNC_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either ROLESYNC_BINARY or ROLESYNC_INLINE=1 is required.\n\nBinary mode:\n  go build -o rolesyncctl ./cmd/rolesyncctl\n  INTEGRATION_TEST=1 ROLESYNC_BINARY=$(pwd)/rolesyncctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 ROLESYNC_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("ROLESYNC_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("rolesync_test"),
		tcpostgres.WithUsername("rolesync"),
		tcpostgres.WithPassword("rolesync"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://rolesync:rolesync@%s:%s/rolesync_test?sslmode=disable", host, port.Port())

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rawDB, err := db.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	if err := runMigrations(rawDB, migrationsDir); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	platform := StartFakePlatform()

	return &TestContext{
		DB:          db,
		RawDB:       rawDB,
		Container:   pgContainer,
		DatabaseURL: connStr,
		Platform:    platform,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		InlineMode:  inlineMode,
		BinaryPath:  binaryPath,
	}, nil
}

// Server returns the running server instance, starting one on first
// use.
func (tc *TestContext) Server() (*ServerInstance, error) {
	if tc.server != nil {
		return tc.server, nil
	}
	instance, err := StartServer(tc)
	if err != nil {
		return nil, err
	}
	tc.server = instance
	return instance, nil
}

// ResetState truncates the application tables and clears the fake
// platform between scenarios.
func (tc *TestContext) ResetState() error {
	tables := []string{
		"verified_identities",
		"guild_settings",
		"role_mappings",
		"role_dependencies",
		"priority_slots",
	}
	for _, table := range tables {
		if err := tc.DB.Exec("TRUNCATE TABLE " + table).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	tc.Platform.Reset()
	return nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.server != nil {
		tc.server.Stop()
	}
	if tc.Platform != nil {
		tc.Platform.Close()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{"../..", "..", "."}
	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}
	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations executes the up migrations in order.
func runMigrations(db *sql.DB, migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", filepath.Base(file), err)
		}
	}
	return nil
}
