package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clipper/internal/clip"
)

const itemColumns = `id, session_id, source_id, title, start_ms, end_ms, score,
    aspect, preset, status, retry_count, error_message, media_path,
    artifact_path, created_at, updated_at`

// NewClip inserts a queued job for one validated clip request.
func (s *Store) NewClip(ctx context.Context, sessionID, sourceID string, request clip.Request) (*Item, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO clip_jobs (
            session_id, source_id, title, start_ms, end_ms, score,
            aspect, preset, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		sourceID,
		request.Title,
		request.Start.Milliseconds(),
		request.End.Milliseconds(),
		request.Score,
		string(request.Aspect),
		string(request.Preset),
		StatusQueued,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert clip job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches one job by its identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		fmt.Sprintf("SELECT %s FROM clip_jobs WHERE id = ?", itemColumns), id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clip job %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get clip job %d: %w", id, err)
	}
	return item, nil
}

// List returns jobs filtered by status, newest first. No statuses means all.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := fmt.Sprintf("SELECT %s FROM clip_jobs", itemColumns)
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clip jobs: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip job: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update persists the item's mutable fields.
func (s *Store) Update(ctx context.Context, item *Item) error {
	item.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE clip_jobs SET
            status = ?, retry_count = ?, error_message = ?,
            media_path = ?, artifact_path = ?, updated_at = ?
        WHERE id = ?`,
		string(item.Status),
		item.RetryCount,
		item.ErrorMessage,
		item.MediaPath,
		item.ArtifactPath,
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update clip job %d: %w", item.ID, err)
	}
	return nil
}

// ResetStuck rolls in-flight jobs back to queued after an interrupted run.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE clip_jobs SET status = ?, updated_at = ?
         WHERE status IN (?, ?, ?)`,
		StatusQueued,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusDownloading,
		StatusTracking,
		StatusRendering,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes jobs in the given statuses, or every job when none given.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := "DELETE FROM clip_jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear clip jobs: %w", err)
	}
	return res.RowsAffected()
}

// Summarize aggregates job counts by lifecycle phase.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT status, COUNT(1) FROM clip_jobs GROUP BY status")
	if err != nil {
		return Summary{}, fmt.Errorf("summarize queue: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		summary.Total += count
		status, err := ParseStatus(raw)
		if err != nil {
			continue
		}
		switch {
		case status == StatusQueued:
			summary.Queued += count
		case status.IsProcessing():
			summary.Processing += count
		case status == StatusCompleted:
			summary.Completed += count
		case status == StatusFailed:
			summary.Failed += count
		}
	}
	return summary, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item             Item
		startMS, endMS   int64
		aspect, preset   string
		status           string
		created, updated string
	)
	if err := row.Scan(
		&item.ID, &item.SessionID, &item.SourceID, &item.Title,
		&startMS, &endMS, &item.Score,
		&aspect, &preset, &status,
		&item.RetryCount, &item.ErrorMessage,
		&item.MediaPath, &item.ArtifactPath,
		&created, &updated,
	); err != nil {
		return nil, err
	}

	item.Start = time.Duration(startMS) * time.Millisecond
	item.End = time.Duration(endMS) * time.Millisecond

	parsedStatus, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	item.Status = parsedStatus

	if item.Aspect, err = clip.ParseAspect(aspect); err != nil {
		return nil, err
	}
	if item.Preset, err = clip.ParsePreset(preset); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &item, nil
}
