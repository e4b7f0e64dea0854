package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	apperrors "github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
)

// LetterStore persists letters in a SQLite database.
type LetterStore struct {
	db  *sql.DB
	log *logger.Logger
	now func() time.Time
}

// OpenLetterStore opens (creating if needed) the letter database at path.
// ":memory:" gives a private in-memory database.
func OpenLetterStore(ctx context.Context, path string, log *logger.Logger) (*LetterStore, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open letter database: %w", err)
	}
	// one connection: sqlite has a single writer and :memory: is per-connection
	db.SetMaxOpenConns(1)

	if err := initLetterDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug("letter store opened", "path", path)
	return &LetterStore{db: db, log: log, now: time.Now}, nil
}

// initLetterDB creates the letters table and its indexes.
func initLetterDB(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS letters (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			template_id TEXT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_letters_user_updated ON letters(user_id, updated_at DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("failed to initialize letter database: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *LetterStore) Close() error {
	return s.db.Close()
}

const letterColumns = `id, user_id, template_id, title, content, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLetter(row rowScanner) (*models.Letter, error) {
	var (
		l                models.Letter
		templateID       sql.NullString
		created, updated int64
	)
	if err := row.Scan(&l.ID, &l.UserID, &templateID, &l.Title, &l.Content, &created, &updated); err != nil {
		return nil, err
	}
	l.TemplateID = templateID.String
	l.CreatedAt = time.Unix(0, created).UTC()
	l.UpdatedAt = time.Unix(0, updated).UTC()
	return &l, nil
}

// ListForUser returns the user's letters, most recently updated first.
func (s *LetterStore) ListForUser(ctx context.Context, userID string) ([]*models.Letter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+letterColumns+` FROM letters WHERE user_id = ? ORDER BY updated_at DESC, created_at DESC`,
		userID)
	if err != nil {
		return nil, apperrors.StorageError("list letters", err)
	}
	defer rows.Close()

	letters := []*models.Letter{}
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, apperrors.StorageError("list letters", err)
		}
		letters = append(letters, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StorageError("list letters", err)
	}
	return letters, nil
}

// Get returns a letter owned by userID.
func (s *LetterStore) Get(ctx context.Context, id, userID string) (*models.Letter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+letterColumns+` FROM letters WHERE id = ? AND user_id = ?`, id, userID)
	l, err := scanLetter(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundError("letter").WithContext("id", id)
	}
	if err != nil {
		return nil, apperrors.StorageError("get letter", err)
	}
	return l, nil
}

// Create inserts a new letter. templateID may be empty.
func (s *LetterStore) Create(ctx context.Context, userID, templateID, title, content string) (*models.Letter, error) {
	if userID == "" {
		return nil, apperrors.ValidationError("letter owner is required")
	}
	now := s.now().UTC()
	l := &models.Letter{
		ID:         uuid.NewString(),
		UserID:     userID,
		TemplateID: templateID,
		Title:      title,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var tmpl sql.NullString
	if templateID != "" {
		tmpl = sql.NullString{String: templateID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO letters (`+letterColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, tmpl, l.Title, l.Content, now.UnixNano(), now.UnixNano())
	if err != nil {
		return nil, apperrors.StorageError("create letter", err)
	}
	s.log.Debug("letter created", "id", l.ID, "user", userID)
	return l, nil
}

// Update applies patch to a letter and returns the stored record.
func (s *LetterStore) Update(ctx context.Context, id string, patch models.LetterPatch) (*models.Letter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.StorageError("update letter", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+letterColumns+` FROM letters WHERE id = ?`, id)
	l, err := scanLetter(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundError("letter").WithContext("id", id)
	}
	if err != nil {
		return nil, apperrors.StorageError("update letter", err)
	}

	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Content != nil {
		l.Content = *patch.Content
	}
	l.UpdatedAt = s.now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE letters SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		l.Title, l.Content, l.UpdatedAt.UnixNano(), id); err != nil {
		return nil, apperrors.StorageError("update letter", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.StorageError("update letter", err)
	}
	return l, nil
}

// Delete removes a letter.
func (s *LetterStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM letters WHERE id = ?`, id)
	if err != nil {
		return apperrors.StorageError("delete letter", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFoundError("letter").WithContext("id", id)
	}
	return nil
}
