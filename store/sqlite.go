package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/glebarez/go-sqlite"
)

// SQLite is the relational backend. It splits the data across three
// tables: files holds the metadata, file_links maps tokens to files,
// and user_stats keeps per-uploader counters.
type SQLite struct {
	db *sqlx.DB
}

// NewSQLite opens the database at path and applies the schema
// migrations.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite driver: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.applyMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// applyMigrations creates all the SQL tables needed for the service to
// work.
func (s *SQLite) applyMigrations() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS "files" (
			"id" INTEGER PRIMARY KEY AUTOINCREMENT,
			"file_ref" TEXT NOT NULL,
			"file_name" TEXT NOT NULL,
			"file_size" INTEGER NOT NULL,
			"uploader_id" INTEGER NOT NULL,
			"created_at" INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS "file_links" (
			"token" TEXT PRIMARY KEY,
			"file_id" INTEGER NOT NULL REFERENCES "files"("id"),
			"created_at" INTEGER NOT NULL,
			"expires_at" INTEGER,
			"access_count" INTEGER NOT NULL DEFAULT 0,
			"last_access_at" INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS "user_stats" (
			"user_id" INTEGER PRIMARY KEY,
			"first_seen_at" INTEGER NOT NULL,
			"upload_count" INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Put(ctx context.Context, rec *FileRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT 1 FROM "file_links" WHERE "token" = $1`, rec.Token)
	if err == nil {
		return ErrTokenExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check token: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO "files" ("file_ref", "file_name", "file_size", "uploader_id", "created_at") VALUES ($1, $2, $3, $4, $5)`,
		rec.FileRef, rec.Name, rec.Size, rec.UploaderID, rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("file insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO "file_links" ("token", "file_id", "created_at") VALUES ($1, $2, $3)`,
		rec.Token, fileID, rec.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("insert link: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO "user_stats" ("user_id", "first_seen_at", "upload_count") VALUES ($1, $2, 1)
		 ON CONFLICT("user_id") DO UPDATE SET "upload_count" = "upload_count" + 1`,
		rec.UploaderID, time.Now().Unix()); err != nil {
		return fmt.Errorf("bump uploader stats: %w", err)
	}

	return tx.Commit()
}

// linkRow is the joined shape of files + file_links.
type linkRow struct {
	Token        string        `db:"token"`
	FileRef      string        `db:"file_ref"`
	Name         string        `db:"file_name"`
	Size         int64         `db:"file_size"`
	UploaderID   int64         `db:"uploader_id"`
	CreatedAt    int64         `db:"created_at"`
	AccessCount  int64         `db:"access_count"`
	LastAccessAt sql.NullInt64 `db:"last_access_at"`
}

func (s *SQLite) Get(ctx context.Context, token string) (*FileRecord, error) {
	var row linkRow
	err := s.db.GetContext(ctx, &row,
		`SELECT l."token", f."file_ref", f."file_name", f."file_size", f."uploader_id",
		        f."created_at", l."access_count", l."last_access_at"
		 FROM "file_links" l JOIN "files" f ON f."id" = l."file_id"
		 WHERE l."token" = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select link: %w", err)
	}
	rec := &FileRecord{
		Token:       row.Token,
		FileRef:     row.FileRef,
		Name:        row.Name,
		Size:        row.Size,
		UploaderID:  row.UploaderID,
		CreatedAt:   time.Unix(row.CreatedAt, 0).UTC(),
		AccessCount: row.AccessCount,
	}
	if row.LastAccessAt.Valid {
		rec.LastAccessAt = time.Unix(row.LastAccessAt.Int64, 0).UTC()
	}
	return rec, nil
}

func (s *SQLite) Touch(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE "file_links" SET "access_count" = "access_count" + 1, "last_access_at" = $1 WHERE "token" = $2`,
		time.Now().Unix(), token)
	if err != nil {
		return fmt.Errorf("update access counters: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) SeenUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO "user_stats" ("user_id", "first_seen_at") VALUES ($1, $2)
		 ON CONFLICT("user_id") DO NOTHING`,
		userID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record user: %w", err)
	}
	return nil
}

func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := s.db.GetContext(ctx, &stats.Files, `SELECT COUNT(*) FROM "file_links"`); err != nil {
		return Stats{}, fmt.Errorf("count links: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.Users, `SELECT COUNT(*) FROM "user_stats"`); err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	return stats, nil
}

func (s *SQLite) Close() error { return s.db.Close() }
