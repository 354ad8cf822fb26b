package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS documents (
  id          VARCHAR(36)  NOT NULL PRIMARY KEY,
  user_id     VARCHAR(255) NOT NULL,
  filename    VARCHAR(255) NOT NULL,
  storage_key VARCHAR(512) NOT NULL,
  created_at  DATETIME(6)  NOT NULL,
  KEY idx_documents_user (user_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`, `
CREATE TABLE IF NOT EXISTS results (
  seq           BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  id            VARCHAR(36)  NOT NULL UNIQUE,
  document_id   VARCHAR(36)  NOT NULL,
  analysis_type VARCHAR(64)  NOT NULL,
  content       MEDIUMTEXT   NOT NULL,
  created_at    DATETIME(6)  NOT NULL,
  KEY idx_results_document (document_id, created_at),
  CONSTRAINT fk_results_document FOREIGN KEY (document_id) REFERENCES documents (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql migrate: %w", err)
		}
	}
	return nil
}
