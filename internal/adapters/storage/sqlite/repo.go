package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/agenda/internal/app"
	"github.com/hylla/agenda/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// workshopDateLayout stores workshop dates at day precision.
const workshopDateLayout = "2006-01-02"

// Repository is the sqlite-backed agenda store of the local backend.
type Repository struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema when missing.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS workshops (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			pathway_title TEXT NOT NULL DEFAULT '',
			pathway_participant_count INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS agenda_items (
			id TEXT PRIMARY KEY,
			workshop_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			activity_type TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			facilitator_id TEXT NOT NULL DEFAULT '',
			facilitator_name TEXT NOT NULL DEFAULT '',
			order_index INTEGER NOT NULL,
			materials_json TEXT NOT NULL DEFAULT '[]',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(workshop_id) REFERENCES workshops(id) ON DELETE CASCADE
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_agenda_items_workshop_order ON agenda_items(workshop_id, order_index);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateWorkshop inserts one workshop.
func (r *Repository) CreateWorkshop(ctx context.Context, w domain.Workshop) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workshops(id, title, date, duration_minutes, location, pathway_title, pathway_participant_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.Title, workshopDate(w.Date), w.DurationMinutes, w.Location, w.PathwayTitle, w.PathwayParticipantCount)
	return err
}

// GetWorkshop returns one workshop.
func (r *Repository) GetWorkshop(ctx context.Context, id string) (domain.Workshop, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, date, duration_minutes, location, pathway_title, pathway_participant_count
		FROM workshops
		WHERE id = ?
	`, id)
	w, err := scanWorkshop(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Workshop{}, app.ErrNotFound
	}
	return w, err
}

// ListWorkshops lists every workshop.
func (r *Repository) ListWorkshops(ctx context.Context) ([]domain.Workshop, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, date, duration_minutes, location, pathway_title, pathway_participant_count
		FROM workshops
		ORDER BY date ASC, title ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Workshop{}
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// CreateAgendaItem rewrites sibling order and inserts the item in one transaction.
func (r *Repository) CreateAgendaItem(ctx context.Context, item domain.AgendaItem, siblings []domain.OrderEntry) error {
	materialsJSON, err := json.Marshal(item.MaterialsNeeded)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = applyOrder(ctx, tx, item.WorkshopID, siblings); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO agenda_items(
			id, workshop_id, title, description, activity_type, start_time, end_time,
			facilitator_id, facilitator_name, order_index, materials_json, notes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.WorkshopID,
		item.Title,
		item.Description,
		string(item.ActivityType),
		item.StartTime.String(),
		item.EndTime.String(),
		item.FacilitatorID,
		item.FacilitatorName,
		item.OrderIndex,
		string(materialsJSON),
		item.Notes,
		ts(item.CreatedAt),
		ts(item.UpdatedAt),
	)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// UpdateAgendaItem writes every field except order and workshop.
func (r *Repository) UpdateAgendaItem(ctx context.Context, item domain.AgendaItem) error {
	materialsJSON, err := json.Marshal(item.MaterialsNeeded)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE agenda_items
		SET title = ?, description = ?, activity_type = ?, start_time = ?, end_time = ?,
			facilitator_id = ?, facilitator_name = ?, materials_json = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`,
		item.Title,
		item.Description,
		string(item.ActivityType),
		item.StartTime.String(),
		item.EndTime.String(),
		item.FacilitatorID,
		item.FacilitatorName,
		string(materialsJSON),
		item.Notes,
		ts(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetAgendaItem returns one agenda item.
func (r *Repository) GetAgendaItem(ctx context.Context, id string) (domain.AgendaItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+agendaItemColumns+` FROM agenda_items WHERE id = ?`, id)
	item, err := scanAgendaItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AgendaItem{}, app.ErrNotFound
	}
	return item, err
}

// ListAgendaItems lists one workshop's items by order index.
func (r *Repository) ListAgendaItems(ctx context.Context, workshopID string) ([]domain.AgendaItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+agendaItemColumns+`
		FROM agenda_items
		WHERE workshop_id = ?
		ORDER BY order_index ASC, id ASC
	`, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.AgendaItem{}
	for rows.Next() {
		item, err := scanAgendaItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteAgendaItem deletes the item and applies the sibling order in one transaction.
func (r *Repository) DeleteAgendaItem(ctx context.Context, id string, remaining []domain.OrderEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var workshopID string
	err = tx.QueryRowContext(ctx, `SELECT workshop_id FROM agenda_items WHERE id = ?`, id).Scan(&workshopID)
	if errors.Is(err, sql.ErrNoRows) {
		err = app.ErrNotFound
		return err
	}
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM agenda_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	if err = applyOrder(ctx, tx, workshopID, remaining); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// ApplyOrder rewrites order indexes for one workshop atomically.
func (r *Repository) ApplyOrder(ctx context.Context, workshopID string, entries []domain.OrderEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = applyOrder(ctx, tx, workshopID, entries); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// applyOrder writes negated indexes first and flips them afterwards so the
// unique (workshop_id, order_index) index holds at every statement.
func applyOrder(ctx context.Context, execer execerContext, workshopID string, entries []domain.OrderEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		res, err := execer.ExecContext(ctx, `
			UPDATE agenda_items SET order_index = ? WHERE id = ? AND workshop_id = ?
		`, -e.OrderIndex, e.ID, workshopID)
		if err != nil {
			return fmt.Errorf("stage order for %q: %w", e.ID, err)
		}
		if err := translateNoRows(res); err != nil {
			return fmt.Errorf("stage order for %q: %w", e.ID, err)
		}
	}
	if _, err := execer.ExecContext(ctx, `
		UPDATE agenda_items SET order_index = -order_index WHERE workshop_id = ? AND order_index < 0
	`, workshopID); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

const agendaItemColumns = `id, workshop_id, title, description, activity_type, start_time, end_time,
	facilitator_id, facilitator_name, order_index, materials_json, notes, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkshop(s scanner) (domain.Workshop, error) {
	var (
		w       domain.Workshop
		dateRaw string
	)
	if err := s.Scan(&w.ID, &w.Title, &dateRaw, &w.DurationMinutes, &w.Location, &w.PathwayTitle, &w.PathwayParticipantCount); err != nil {
		return domain.Workshop{}, err
	}
	if dateRaw != "" {
		if d, err := time.Parse(workshopDateLayout, dateRaw); err == nil {
			w.Date = d.UTC()
		}
	}
	return w, nil
}

func scanAgendaItem(s scanner) (domain.AgendaItem, error) {
	var (
		item          domain.AgendaItem
		activityType  string
		startRaw      string
		endRaw        string
		materialsJSON string
		createdRaw    string
		updatedRaw    string
	)
	if err := s.Scan(
		&item.ID,
		&item.WorkshopID,
		&item.Title,
		&item.Description,
		&activityType,
		&startRaw,
		&endRaw,
		&item.FacilitatorID,
		&item.FacilitatorName,
		&item.OrderIndex,
		&materialsJSON,
		&item.Notes,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return domain.AgendaItem{}, err
	}
	item.ActivityType = domain.ActivityType(activityType)
	var err error
	if item.StartTime, err = domain.ParseTimeOfDay(startRaw); err != nil {
		return domain.AgendaItem{}, fmt.Errorf("decode start_time for %q: %w", item.ID, err)
	}
	if item.EndTime, err = domain.ParseTimeOfDay(endRaw); err != nil {
		return domain.AgendaItem{}, fmt.Errorf("decode end_time for %q: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(materialsJSON), &item.MaterialsNeeded); err != nil {
		return domain.AgendaItem{}, fmt.Errorf("decode materials for %q: %w", item.ID, err)
	}
	if item.MaterialsNeeded == nil {
		item.MaterialsNeeded = []string{}
	}
	item.CreatedAt = parseTS(createdRaw)
	item.UpdatedAt = parseTS(updatedRaw)
	return item, nil
}

// translateNoRows maps a zero-row write to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func workshopDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(workshopDateLayout)
}
