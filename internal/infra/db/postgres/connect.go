package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS documents (
  id          VARCHAR(36)  PRIMARY KEY,
  user_id     VARCHAR(255) NOT NULL,
  filename    VARCHAR(255) NOT NULL,
  storage_key VARCHAR(512) NOT NULL,
  created_at  TIMESTAMPTZ  NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS idx_documents_user ON documents (user_id, created_at);`,
	`
CREATE TABLE IF NOT EXISTS results (
  seq           BIGSERIAL    PRIMARY KEY,
  id            VARCHAR(36)  NOT NULL UNIQUE,
  document_id   VARCHAR(36)  NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  analysis_type VARCHAR(64)  NOT NULL,
  content       TEXT         NOT NULL,
  created_at    TIMESTAMPTZ  NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS idx_results_document ON results (document_id, created_at);`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
