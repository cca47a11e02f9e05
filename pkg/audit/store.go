package audit

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// Store persists audit events to a PostgreSQL database
type Store struct {
	db       *sql.DB
	hostname string
	appName  string
	pid      int
}

// NewStore creates a new audit store from the AUDIT_DATABASE_URL environment variable.
// Returns nil (no error) if the variable is not set; the database sink is optional.
func NewStore() (*Store, error) {
	databaseURL := os.Getenv("AUDIT_DATABASE_URL")
	if databaseURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	return NewStoreWithDB(db), nil
}

// NewStoreWithDB creates an audit store backed by an existing database handle
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{
		db:       db,
		hostname: hostname,
		appName:  "rolesync",
		pid:      os.Getpid(),
	}
}

// Save writes an audit event to the messages table
func (s *Store) Save(event Event) error {
	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	_, err := s.db.Exec(
		`INSERT INTO messages (
			timestamp, facility, severity, hostname, appname, procid, msgid, sdata, message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		time.Now().UTC(),
		event.Facility(),
		int(event.Severity()),
		s.hostname,
		s.appName,
		fmt.Sprintf("%d", s.pid),
		event.MessageID(),
		sd,
		event.Message(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit message: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
