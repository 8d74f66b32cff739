package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// maxQueryUIDs bounds the number of uids bound into one IN clause
const maxQueryUIDs = 500

// Store provides methods for storing and retrieving bodies from the archive
type Store struct {
	cache  *Cache
	logger *logrus.Logger
	now    func() time.Time
}

// FolderStats summarizes the archived bodies of one account folder
type FolderStats struct {
	Account    string    `json:"account"`
	Folder     string    `json:"folder"`
	Bodies     int       `json:"bodies"`
	Bytes      int64     `json:"bytes"`
	LastCached time.Time `json:"last_cached"`
}

// NewStore creates a new store instance
func NewStore(cache *Cache, logger *logrus.Logger) *Store {
	return &Store{
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetBodies returns the archived bodies among uids. Uids that were never
// archived are absent from the result.
func (s *Store) GetBodies(account, folder string, uids []int, html bool) (map[int]string, error) {
	bodies := make(map[int]string, len(uids))
	for start := 0; start < len(uids); start += maxQueryUIDs {
		end := start + maxQueryUIDs
		if end > len(uids) {
			end = len(uids)
		}
		if err := s.getChunk(account, folder, uids[start:end], html, bodies); err != nil {
			return nil, err
		}
	}
	return bodies, nil
}

func (s *Store) getChunk(account, folder string, uids []int, html bool, into map[int]string) error {
	args := make([]interface{}, 0, len(uids)+3)
	args = append(args, account, folder, boolInt(html))
	for _, uid := range uids {
		args = append(args, uid)
	}

	query := fmt.Sprintf(`
		SELECT uid, body
		FROM bodies
		WHERE account = ? AND folder = ? AND is_html = ? AND uid IN (%s)
	`, strings.TrimSuffix(strings.Repeat("?,", len(uids)), ","))

	rows, err := s.cache.DB().Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query bodies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid int
		var body string
		if err := rows.Scan(&uid, &body); err != nil {
			return fmt.Errorf("failed to scan body: %w", err)
		}
		into[uid] = body
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read bodies: %w", err)
	}
	return nil
}

// PutBodies upserts bodies in the archive in one transaction
func (s *Store) PutBodies(account, folder string, bodies map[int]string, html bool) error {
	if len(bodies) == 0 {
		return nil
	}

	tx, err := s.cache.DB().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO bodies (account, folder, uid, is_html, body, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account, folder, uid, is_html) DO UPDATE SET
			body = excluded.body,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := s.now().Unix()
	for uid, body := range bodies {
		if _, err := stmt.Exec(account, folder, uid, boolInt(html), body, now); err != nil {
			return fmt.Errorf("failed to upsert body %d: %w", uid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bodies: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"account": account,
		"folder":  folder,
		"count":   len(bodies),
		"html":    html,
	}).Debug("Archived bodies")
	return nil
}

// Purge removes every archived body of an account folder and returns the
// number of rows removed
func (s *Store) Purge(account, folder string) (int64, error) {
	result, err := s.cache.DB().Exec("DELETE FROM bodies WHERE account = ? AND folder = ?", account, folder)
	if err != nil {
		return 0, fmt.Errorf("failed to purge bodies: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged bodies: %w", err)
	}
	return n, nil
}

// Stats lists archive usage per account folder
func (s *Store) Stats() ([]FolderStats, error) {
	rows, err := s.cache.DB().Query(`
		SELECT account, folder, COUNT(*), COALESCE(SUM(LENGTH(CAST(body AS BLOB))), 0), MAX(cached_at)
		FROM bodies
		GROUP BY account, folder
		ORDER BY account, folder
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []FolderStats
	for rows.Next() {
		var st FolderStats
		var lastCached sql.NullInt64
		if err := rows.Scan(&st.Account, &st.Folder, &st.Bodies, &st.Bytes, &lastCached); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		if lastCached.Valid {
			st.LastCached = time.Unix(lastCached.Int64, 0)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return stats, nil
}
