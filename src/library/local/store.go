package local

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"muzik/src/library"
)

// Store is the relational song store. Rows hold metadata and object storage
// paths; the media bytes themselves live in public storage buckets.
type Store struct {
	db         *sql.DB
	storageURL string
}

// New opens the song database at dbPath and migrates the schema. storageURL
// is the base URL of the object storage host media paths resolve against.
func New(ctx context.Context, dbPath, storageURL string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open song db: %w", err)
	}

	store := &Store{db: db, storageURL: strings.TrimSuffix(storageURL, "/")}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author TEXT NOT NULL,
		title TEXT NOT NULL,
		song_path TEXT NOT NULL,
		image_path TEXT NOT NULL DEFAULT ''
	);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate songs schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// TrackByID looks up a single song row.
func (s *Store) TrackByID(ctx context.Context, id int64) (library.LocalTrack, error) {
	var track library.LocalTrack
	err := s.db.QueryRowContext(ctx,
		`SELECT id, author, title, song_path, image_path FROM songs WHERE id = ?`, id).
		Scan(&track.ID, &track.Author, &track.Name, &track.SongPath, &track.ImagePath)
	if err == sql.ErrNoRows {
		return library.LocalTrack{}, fmt.Errorf("song %d: %w", id, library.ErrNotFound)
	} else if err != nil {
		return library.LocalTrack{}, fmt.Errorf("song %d: %w", id, err)
	}
	return track, nil
}

// Tracks lists all songs ordered by title.
func (s *Store) Tracks(ctx context.Context) ([]library.LocalTrack, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author, title, song_path, image_path FROM songs ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()
	return scanTracks(rows)
}

// Search matches the query case-insensitively against title and author.
func (s *Store) Search(ctx context.Context, query string) ([]library.LocalTrack, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author, title, song_path, image_path FROM songs
		 WHERE title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\'
		 ORDER BY title ASC`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()
	return scanTracks(rows)
}

// AddTrack inserts a song row and returns it with its assigned id.
func (s *Store) AddTrack(ctx context.Context, track library.LocalTrack) (library.LocalTrack, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO songs (author, title, song_path, image_path) VALUES (?, ?, ?, ?)`,
		track.Author, track.Name, track.SongPath, track.ImagePath)
	if err != nil {
		return library.LocalTrack{}, fmt.Errorf("insert song: %w", err)
	}
	track.ID, err = res.LastInsertId()
	if err != nil {
		return library.LocalTrack{}, fmt.Errorf("insert song: %w", err)
	}
	return track, nil
}

// RemoveTrack deletes a song row. Removing an id that does not exist is not
// an error.
func (s *Store) RemoveTrack(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete song %d: %w", id, err)
	}
	return nil
}

// PublicURL derives the public object storage URL for a path in the named
// bucket. Buckets are public, no signing round trip is needed.
func (s *Store) PublicURL(bucket, objectPath string) string {
	return s.storageURL + "/object/public/" + bucket + "/" + strings.TrimPrefix(objectPath, "/")
}

func scanTracks(rows *sql.Rows) ([]library.LocalTrack, error) {
	var tracks []library.LocalTrack
	for rows.Next() {
		var track library.LocalTrack
		if err := rows.Scan(&track.ID, &track.Author, &track.Name, &track.SongPath, &track.ImagePath); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return tracks, nil
}

func escapeLike(str string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(str)
}
