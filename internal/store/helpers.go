package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/damii-health/wellnessd/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanSavedPlan scans a SavedPlan from sql.Rows.
func scanSavedPlan(rows *sql.Rows) (models.SavedPlan, error) {
	var doc models.SavedPlan
	var planJSON string
	if err := rows.Scan(&doc.ID, &doc.UserID, &planJSON, &doc.CreatedAt); err != nil {
		return doc, fmt.Errorf("scan saved plan failed: %w", err)
	}
	if err := json.Unmarshal([]byte(planJSON), &doc.Plan); err != nil {
		return doc, fmt.Errorf("unmarshal saved plan %s failed: %w", doc.ID, err)
	}
	return doc, nil
}

// scanSavedPlanRow scans a SavedPlan from a single sql.Row.
func scanSavedPlanRow(row *sql.Row) (models.SavedPlan, error) {
	var doc models.SavedPlan
	var planJSON string
	if err := row.Scan(&doc.ID, &doc.UserID, &planJSON, &doc.CreatedAt); err != nil {
		return doc, err
	}
	if err := json.Unmarshal([]byte(planJSON), &doc.Plan); err != nil {
		return doc, fmt.Errorf("unmarshal saved plan %s failed: %w", doc.ID, err)
	}
	return doc, nil
}

// scanMoodLog scans a MoodLog from sql.Rows.
func scanMoodLog(rows *sql.Rows) (models.MoodLog, error) {
	var log models.MoodLog
	var activitiesJSON, notes sql.NullString
	if err := rows.Scan(&log.ID, &log.UserID, &log.Mood, &activitiesJSON, &log.Date, &notes, &log.CreatedAt); err != nil {
		return log, fmt.Errorf("scan mood log failed: %w", err)
	}
	log.Notes = notes.String
	if activitiesJSON.Valid && activitiesJSON.String != "" {
		if err := json.Unmarshal([]byte(activitiesJSON.String), &log.Activities); err != nil {
			return log, fmt.Errorf("unmarshal activities for %s failed: %w", log.ID, err)
		}
	}
	return log, nil
}
