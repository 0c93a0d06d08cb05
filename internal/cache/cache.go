// Package cache persists digested peptide sets to a SQLite file so repeated
// searches over the same protein database and parameters skip digestion; the
// candidate index is rebuilt from the cached peptides. Entries are opaque
// blobs keyed by a digest of the
// inputs; the on-disk layout is not part of any contract.
package cache

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/jonghyeonseol/Glycolamp/internal/digest"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed blob cache.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary initializes) a cache file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS IndexCache (
		CacheKey TEXT PRIMARY KEY,
		CreationDate TEXT,
		Snapshot BLOB
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create cache tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores blob under key, replacing any previous entry.
func (s *Store) Put(key string, blob []byte) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO IndexCache (CacheKey, CreationDate, Snapshot)
		VALUES (?, ?, ?)
	`, key, time.Now().Format("2006-01-02"), blob)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Get retrieves the blob stored under key; ok is false on a miss.
func (s *Store) Get(key string) (blob []byte, ok bool, err error) {
	row := s.db.QueryRow(`SELECT Snapshot FROM IndexCache WHERE CacheKey = ?`, key)
	switch err := row.Scan(&blob); err {
	case nil:
		return blob, true, nil
	case sql.ErrNoRows:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
}

// Snapshot is the cached product of digestion: the target peptides and
// their decoys. The candidate index itself is rebuilt from the snapshot,
// which is cheap relative to digesting a large database.
type Snapshot struct {
	Peptides          []digest.Peptide
	Decoys            []digest.Peptide
	DroppedPalindrome int
}

// EncodeSnapshot serializes a snapshot with gob.
func EncodeSnapshot(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot deserializes a snapshot.
func DecodeSnapshot(blob []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Key derives the cache key from the inputs that determine the peptide set:
// the protein database content, the glycan catalog and the digestion
// parameters.
func Key(proteins io.Reader, glycanCompositions []string, enzyme string,
	missedCleavages, minLength, maxLength int) (string, error) {

	h := sha256.New()
	if _, err := io.Copy(h, proteins); err != nil {
		return "", err
	}
	for _, c := range glycanCompositions {
		fmt.Fprintf(h, "glycan:%s\n", c)
	}
	fmt.Fprintf(h, "enzyme:%s mc:%d min:%d max:%d\n",
		enzyme, missedCleavages, minLength, maxLength)
	return hex.EncodeToString(h.Sum(nil)), nil
}
