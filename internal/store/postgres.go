// Package store provides storage backends for wellnessd.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/damii-health/wellnessd/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SavePlan(ctx context.Context, userID string, plan models.WellnessPlanOutput) (models.SavedPlan, error) {
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
		`INSERT INTO saved_plans (id, user_id, plan_json, created_at) VALUES ($1, $2, $3, $4)`,
		doc.ID, doc.UserID, string(planJSON), doc.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore SavePlan failed", "error", err, "userID", userID)
		return models.SavedPlan{}, fmt.Errorf("failed to insert saved plan: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, userID, planID string) (models.SavedPlan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, plan_json, created_at FROM saved_plans WHERE user_id = $1 AND id = $2`,
		userID, planID)
	doc, err := scanSavedPlanRow(row)
	if err == sql.ErrNoRows {
		return models.SavedPlan{}, ErrPlanNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetPlan failed", "error", err, "planID", planID)
		return models.SavedPlan{}, fmt.Errorf("failed to get saved plan: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context, userID string) ([]models.SavedPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, plan_json, created_at FROM saved_plans WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		slog.Error("PostgresStore ListPlans query failed", "error", err, "userID", userID)
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
	return docs, nil
}

func (s *PostgresStore) DeletePlan(ctx context.Context, userID, planID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_plans WHERE user_id = $1 AND id = $2`, userID, planID)
	if err != nil {
		slog.Error("PostgresStore DeletePlan failed", "error", err, "planID", planID)
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

func (s *PostgresStore) RenamePlan(ctx context.Context, userID, planID, title string) error {
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
		`UPDATE saved_plans SET plan_json = $1 WHERE user_id = $2 AND id = $3`,
		string(planJSON), userID, planID)
	if err != nil {
		slog.Error("PostgresStore RenamePlan failed", "error", err, "planID", planID)
		return fmt.Errorf("failed to rename saved plan: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddMoodLog(ctx context.Context, userID string, log models.MoodLog) (models.MoodLog, error) {
	log.ID = uuid.NewString()
	log.UserID = userID
	log.CreatedAt = time.Now().UTC()
	activitiesJSON, err := json.Marshal(log.Activities)
	if err != nil {
		return models.MoodLog{}, fmt.Errorf("failed to marshal activities: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO mood_logs (id, user_id, mood, activities_json, date, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.UserID, log.Mood, string(activitiesJSON), log.Date, nilIfEmpty(log.Notes), log.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore AddMoodLog failed", "error", err, "userID", userID)
		return models.MoodLog{}, fmt.Errorf("failed to insert mood log: %w", err)
	}
	return log, nil
}

func (s *PostgresStore) ListMoodLogs(ctx context.Context, userID string, limit int, from, to string) ([]models.MoodLog, error) {
	if limit <= 0 {
		limit = DefaultMoodLogLimit
	}
	query := `SELECT id, user_id, mood, activities_json, date, notes, created_at FROM mood_logs WHERE user_id = $1`
	args := []interface{}{userID}
	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("PostgresStore ListMoodLogs query failed", "error", err, "userID", userID)
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

func (s *PostgresStore) AddChatMessage(ctx context.Context, userID, role, content string) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.UserID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore AddChatMessage failed", "error", err, "userID", userID)
		return models.ChatMessage{}, fmt.Errorf("failed to insert chat message: %w", err)
	}
	return msg, nil
}

func (s *PostgresStore) ListChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, created_at FROM (
			SELECT id, user_id, role, content, created_at FROM chat_messages
			WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at ASC`,
		userID, limit)
	if err != nil {
		slog.Error("PostgresStore ListChatMessages query failed", "error", err, "userID", userID)
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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
