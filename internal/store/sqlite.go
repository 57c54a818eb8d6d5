// Package store provides storage backends for wellnessd.
//
// This file implements the SQLite-backed store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/damii-health/wellnessd/internal/models"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN is a file
// path to the database file; its directory is created if missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SavePlan(ctx context.Context, userID string, plan models.WellnessPlanOutput) (models.SavedPlan, error) {
	doc := models.SavedPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      plan,
		CreatedAt: time.Now().UTC(),
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return models.SavedPlan{}, fmt.Errorf("failed to marshal plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_plans (id, user_id, plan_json, created_at) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.UserID, string(planJSON), doc.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore SavePlan failed", "error", err, "userID", userID)
		return models.SavedPlan{}, fmt.Errorf("failed to insert saved plan: %w", err)
	}
	slog.Debug("SQLiteStore SavePlan succeeded", "userID", userID, "planID", doc.ID)
	return doc, nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, userID, planID string) (models.SavedPlan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, plan_json, created_at FROM saved_plans WHERE user_id = ? AND id = ?`,
		userID, planID)
	doc, err := scanSavedPlanRow(row)
	if err == sql.ErrNoRows {
		return models.SavedPlan{}, ErrPlanNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetPlan failed", "error", err, "planID", planID)
		return models.SavedPlan{}, fmt.Errorf("failed to get saved plan: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context, userID string) ([]models.SavedPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, plan_json, created_at FROM saved_plans WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		slog.Error("SQLiteStore ListPlans query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query saved plans: %w", err)
	}
	defer rows.Close()

	var docs []models.SavedPlan
	for rows.Next() {
		doc, err := scanSavedPlan(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved plan rows: %w", err)
	}
	slog.Debug("SQLiteStore ListPlans succeeded", "userID", userID, "count", len(docs))
	return docs, nil
}

func (s *SQLiteStore) DeletePlan(ctx context.Context, userID, planID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_plans WHERE user_id = ? AND id = ?`, userID, planID)
	if err != nil {
		slog.Error("SQLiteStore DeletePlan failed", "error", err, "planID", planID)
		return fmt.Errorf("failed to delete saved plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (s *SQLiteStore) RenamePlan(ctx context.Context, userID, planID, title string) error {
	doc, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return err
	}
	doc.Plan.PersonalizedPlan.Title = title
	planJSON, err := json.Marshal(doc.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal renamed plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE saved_plans SET plan_json = ? WHERE user_id = ? AND id = ?`,
		string(planJSON), userID, planID)
	if err != nil {
		slog.Error("SQLiteStore RenamePlan failed", "error", err, "planID", planID)
		return fmt.Errorf("failed to rename saved plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddMoodLog(ctx context.Context, userID string, log models.MoodLog) (models.MoodLog, error) {
	log.ID = uuid.NewString()
	log.UserID = userID
	log.CreatedAt = time.Now().UTC()
	activitiesJSON, err := json.Marshal(log.Activities)
	if err != nil {
		return models.MoodLog{}, fmt.Errorf("failed to marshal activities: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO mood_logs (id, user_id, mood, activities_json, date, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.Mood, string(activitiesJSON), log.Date, nilIfEmpty(log.Notes), log.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore AddMoodLog failed", "error", err, "userID", userID)
		return models.MoodLog{}, fmt.Errorf("failed to insert mood log: %w", err)
	}
	return log, nil
}

func (s *SQLiteStore) ListMoodLogs(ctx context.Context, userID string, limit int, from, to string) ([]models.MoodLog, error) {
	if limit <= 0 {
		limit = DefaultMoodLogLimit
	}
	query := `SELECT id, user_id, mood, activities_json, date, notes, created_at FROM mood_logs WHERE user_id = ?`
	args := []interface{}{userID}
	if from != "" {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("SQLiteStore ListMoodLogs query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query mood logs: %w", err)
	}
	defer rows.Close()

	var logs []models.MoodLog
	for rows.Next() {
		log, err := scanMoodLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood log rows: %w", err)
	}
	return logs, nil
}

func (s *SQLiteStore) AddChatMessage(ctx context.Context, userID, role, content string) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore AddChatMessage failed", "error", err, "userID", userID)
		return models.ChatMessage{}, fmt.Errorf("failed to insert chat message: %w", err)
	}
	return msg, nil
}

func (s *SQLiteStore) ListChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}
	// Fetch the most recent messages, then return them oldest first for replay.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, created_at FROM (
			SELECT id, user_id, role, content, created_at FROM chat_messages
			WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
		) ORDER BY created_at ASC`,
		userID, limit)
	if err != nil {
		slog.Error("SQLiteStore ListChatMessages query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat message rows: %w", err)
	}
	return msgs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
