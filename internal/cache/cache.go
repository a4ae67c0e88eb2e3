// Package cache stores per-message classification results in a local SQLite
// database so repeated scans skip messages that were already analyzed.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is a cached classification result.
type Entry struct {
	EmailID     string
	IsMarketing bool
	Confidence  float64
	Subject     string
	FromAddress string
	AnalyzedAt  time.Time
}

// Stats summarizes cache contents.
type Stats struct {
	Total        int
	Marketing    int
	NonMarketing int
}

// Cache wraps the SQLite analysis database.
type Cache struct {
	conn *sql.DB
	path string
}

// Open opens (and if needed creates) the cache database at dbPath.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	c := &Cache{conn: conn, path: dbPath}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return c, nil
}

func (c *Cache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyzed_emails (
		email_id TEXT PRIMARY KEY,
		is_marketing INTEGER NOT NULL,
		confidence REAL NOT NULL,
		subject TEXT,
		from_address TEXT,
		analyzed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_analyzed_emails_analyzed_at ON analyzed_emails(analyzed_at DESC);
	`
	_, err := c.conn.Exec(schema)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// MarkAnalyzed records a classification result for a message. Re-analyzing
// a message replaces the previous entry.
func (c *Cache) MarkAnalyzed(emailID string, isMarketing bool, confidence float64, subject, fromAddress string) error {
	_, err := c.conn.Exec(
		`INSERT OR REPLACE INTO analyzed_emails (email_id, is_marketing, confidence, subject, from_address, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		emailID, isMarketing, confidence, truncate(subject, 200), truncate(fromAddress, 200), time.Now(),
	)
	return err
}

// AnalyzedIDs returns which of the given message IDs are already cached.
// The lookup is batched into a single query.
func (c *Cache) AnalyzedIDs(emailIDs []string) (map[string]bool, error) {
	analyzed := make(map[string]bool)
	if len(emailIDs) == 0 {
		return analyzed, nil
	}

	placeholders := strings.Repeat("?,", len(emailIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(emailIDs))
	for i, id := range emailIDs {
		args[i] = id
	}

	rows, err := c.conn.Query(
		"SELECT email_id FROM analyzed_emails WHERE email_id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		analyzed[id] = true
	}
	return analyzed, rows.Err()
}

// Get returns the cached entry for a message ID, or nil if not cached.
func (c *Cache) Get(emailID string) (*Entry, error) {
	var e Entry
	var isMarketing int
	var subject, fromAddress sql.NullString
	err := c.conn.QueryRow(
		`SELECT email_id, is_marketing, confidence, subject, from_address, analyzed_at
		 FROM analyzed_emails WHERE email_id = ?`, emailID,
	).Scan(&e.EmailID, &isMarketing, &e.Confidence, &subject, &fromAddress, &e.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.IsMarketing = isMarketing == 1
	e.Subject = subject.String
	e.FromAddress = fromAddress.String
	return &e, nil
}

// GetStats returns cache contents broken down by classification.
func (c *Cache) GetStats() (Stats, error) {
	var stats Stats
	if err := c.conn.QueryRow("SELECT COUNT(*) FROM analyzed_emails").Scan(&stats.Total); err != nil {
		return stats, err
	}
	if err := c.conn.QueryRow("SELECT COUNT(*) FROM analyzed_emails WHERE is_marketing = 1").Scan(&stats.Marketing); err != nil {
		return stats, err
	}
	stats.NonMarketing = stats.Total - stats.Marketing
	return stats, nil
}

// Clear removes all cached entries and returns how many were deleted.
func (c *Cache) Clear() (int64, error) {
	result, err := c.conn.Exec("DELETE FROM analyzed_emails")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Remove deletes a single entry so the message is re-analyzed on the next
// scan. Returns false if the message was not cached.
func (c *Cache) Remove(emailID string) (bool, error) {
	result, err := c.conn.Exec("DELETE FROM analyzed_emails WHERE email_id = ?", emailID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Vacuum reclaims disk space after large deletions.
func (c *Cache) Vacuum() error {
	_, err := c.conn.Exec("VACUUM")
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
