package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/lbradley/daybook/internal/migration"
	"github.com/lbradley/daybook/internal/models"
)

// SQLiteStore is the default backend.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init creates the database and applies migrations. Idempotent: on an
// already-open store it just runs pending migrations.
func (s *SQLiteStore) Init() error {
	if s.db == nil {
		dir := filepath.Dir(s.path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	}

	runner := migration.NewRunner(s.db, SQLiteMigrations())
	if _, err := runner.Apply(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'daybook init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(s.db, SQLiteMigrations())
	return runner.Validate()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetPreferences() (models.Preferences, error) {
	rows, err := s.db.Query("SELECT key, value FROM preferences")
	if err != nil {
		return models.Preferences{}, err
	}
	defer rows.Close()

	prefs := models.Preferences{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Preferences{}, err
		}
		switch key {
		case "wake_time":
			prefs.WakeTime = value
		case "sleep_time":
			prefs.SleepTime = value
		case "target_work_hours":
			prefs.TargetWorkHours, _ = strconv.Atoi(value)
		case "target_free_hours":
			prefs.TargetFreeHours, _ = strconv.Atoi(value)
		case "target_other_hours":
			prefs.TargetOtherHours, _ = strconv.Atoi(value)
		case "consecutive_study_limit":
			prefs.ConsecutiveStudyLimit, _ = strconv.Atoi(value)
		case "timezone":
			prefs.Timezone = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return models.Preferences{}, err
	}
	if count == 0 {
		return models.Preferences{}, ErrNotFound
	}
	return prefs, nil
}

func (s *SQLiteStore) SavePreferences(prefs models.Preferences) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	pairs := map[string]string{
		"wake_time":               prefs.WakeTime,
		"sleep_time":              prefs.SleepTime,
		"target_work_hours":       strconv.Itoa(prefs.TargetWorkHours),
		"target_free_hours":       strconv.Itoa(prefs.TargetFreeHours),
		"target_other_hours":      strconv.Itoa(prefs.TargetOtherHours),
		"consecutive_study_limit": strconv.Itoa(prefs.ConsecutiveStudyLimit),
		"timezone":                prefs.Timezone,
	}
	for key, value := range pairs {
		if _, err := stmt.Exec(key, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AddCommitment(c models.Commitment) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO commitments (id, date, start_time, end_time, title, type, course_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Date, c.Start, c.End, c.Title, c.Type, c.CourseID)
	return err
}

func (s *SQLiteStore) GetCommitment(id string) (models.Commitment, error) {
	row := s.db.QueryRow(`
		SELECT id, date, start_time, end_time, title, type, course_id
		FROM commitments WHERE id = ?`, id)

	var c models.Commitment
	err := row.Scan(&c.ID, &c.Date, &c.Start, &c.End, &c.Title, &c.Type, &c.CourseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Commitment{}, fmt.Errorf("commitment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Commitment{}, err
	}
	return c, nil
}

func (s *SQLiteStore) GetCommitmentsForDate(date string) ([]models.Commitment, error) {
	rows, err := s.db.Query(`
		SELECT id, date, start_time, end_time, title, type, course_id
		FROM commitments WHERE date = ? ORDER BY start_time`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Commitment
	for rows.Next() {
		var c models.Commitment
		if err := rows.Scan(&c.ID, &c.Date, &c.Start, &c.End, &c.Title, &c.Type, &c.CourseID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateCommitment(c models.Commitment) error {
	res, err := s.db.Exec(`
		UPDATE commitments SET date = ?, start_time = ?, end_time = ?, title = ?, type = ?, course_id = ?
		WHERE id = ?`,
		c.Date, c.Start, c.End, c.Title, c.Type, c.CourseID, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("commitment %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteCommitment(id string) error {
	res, err := s.db.Exec("DELETE FROM commitments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("commitment %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) AddDeadline(d models.Deadline) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO deadlines (id, title, type, due_date, course_id)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Type, d.DueDate, d.CourseID)
	return err
}

func (s *SQLiteStore) GetDeadlines() ([]models.Deadline, error) {
	rows, err := s.db.Query(`
		SELECT id, title, type, due_date, course_id FROM deadlines ORDER BY due_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Deadline
	for rows.Next() {
		var d models.Deadline
		if err := rows.Scan(&d.ID, &d.Title, &d.Type, &d.DueDate, &d.CourseID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteDeadline(id string) error {
	res, err := s.db.Exec("DELETE FROM deadlines WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deadline %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) SaveSchedule(sched models.DailySchedule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var deletedAt sql.NullString
	if sched.DeletedAt != nil {
		deletedAt = sql.NullString{String: *sched.DeletedAt, Valid: true}
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO schedules (date, ai_reasoning, source, deleted_at)
		VALUES (?, ?, ?, ?)`,
		sched.Date, sched.AIReasoning, sched.Source, deletedAt); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM schedule_blocks WHERE schedule_date = ?", sched.Date); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO schedule_blocks (schedule_date, start_time, end_time, title, type, description, course_code, priority, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range sched.Blocks {
		if _, err := stmt.Exec(sched.Date, b.Start, b.End, b.Title, b.Type, b.Description, b.CourseCode, b.Priority, b.Source); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetSchedule(date string) (models.DailySchedule, error) {
	row := s.db.QueryRow(`
		SELECT date, ai_reasoning, source, deleted_at FROM schedules WHERE date = ?`, date)

	sched := models.DailySchedule{}
	var deletedAt sql.NullString
	err := row.Scan(&sched.Date, &sched.AIReasoning, &sched.Source, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailySchedule{}, fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
	}
	if err != nil {
		return models.DailySchedule{}, err
	}
	if deletedAt.Valid {
		return models.DailySchedule{}, fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
	}

	rows, err := s.db.Query(`
		SELECT start_time, end_time, title, type, description, course_code, priority, source
		FROM schedule_blocks WHERE schedule_date = ? ORDER BY start_time`, date)
	if err != nil {
		return models.DailySchedule{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var b models.TimeBlock
		if err := rows.Scan(&b.Start, &b.End, &b.Title, &b.Type, &b.Description, &b.CourseCode, &b.Priority, &b.Source); err != nil {
			return models.DailySchedule{}, err
		}
		sched.Blocks = append(sched.Blocks, b)
	}
	return sched, rows.Err()
}

func (s *SQLiteStore) DeleteSchedule(date string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM schedules WHERE date = ?", date)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
	}
	if _, err := tx.Exec("DELETE FROM schedule_blocks WHERE schedule_date = ?", date); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveFeedback(fb models.BlockFeedback) error {
	var actual sql.NullInt64
	if fb.ActualTimeSpent != nil {
		actual = sql.NullInt64{Int64: int64(*fb.ActualTimeSpent), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO block_feedback
			(schedule_date, block_start_time, completed, skipped, actual_time_spent, skip_reason, energy_rating, difficulty_rating, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.ScheduleDate, fb.BlockStartTime, fb.Completed, fb.Skipped, actual, fb.SkipReason, fb.EnergyRating, fb.DifficultyRating, fb.SubmittedAt)
	return err
}

func (s *SQLiteStore) GetFeedback(date, blockStartTime string) (models.BlockFeedback, error) {
	row := s.db.QueryRow(`
		SELECT schedule_date, block_start_time, completed, skipped, actual_time_spent, skip_reason, energy_rating, difficulty_rating, submitted_at
		FROM block_feedback WHERE schedule_date = ? AND block_start_time = ?`, date, blockStartTime)
	fb, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BlockFeedback{}, fmt.Errorf("feedback for %s %s: %w", date, blockStartTime, ErrNotFound)
	}
	return fb, err
}

func (s *SQLiteStore) GetFeedbackForDate(date string) ([]models.BlockFeedback, error) {
	rows, err := s.db.Query(`
		SELECT schedule_date, block_start_time, completed, skipped, actual_time_spent, skip_reason, energy_rating, difficulty_rating, submitted_at
		FROM block_feedback WHERE schedule_date = ? ORDER BY block_start_time`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BlockFeedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddDriftEvent(e models.DriftEvent) error {
	var resolvedAt sql.NullString
	if e.ResolvedAt != nil {
		resolvedAt = sql.NullString{String: *e.ResolvedAt, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO drift_events
			(id, schedule_date, block_start_time, block_title, planned_duration, actual_duration,
			 drift_minutes, cumulative_drift, affected_blocks_count, resolved, user_choice, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ScheduleDate, e.BlockStartTime, e.BlockTitle, e.PlannedDuration, e.ActualDuration,
		e.DriftMinutes, e.CumulativeDrift, e.AffectedBlocksCount, e.Resolved, e.UserChoice, e.CreatedAt, resolvedAt)
	return err
}

func (s *SQLiteStore) UpdateDriftEvent(e models.DriftEvent) error {
	var resolvedAt sql.NullString
	if e.ResolvedAt != nil {
		resolvedAt = sql.NullString{String: *e.ResolvedAt, Valid: true}
	}
	res, err := s.db.Exec(`
		UPDATE drift_events SET
			schedule_date = ?, block_start_time = ?, block_title = ?, planned_duration = ?, actual_duration = ?,
			drift_minutes = ?, cumulative_drift = ?, affected_blocks_count = ?, resolved = ?, user_choice = ?, resolved_at = ?
		WHERE id = ?`,
		e.ScheduleDate, e.BlockStartTime, e.BlockTitle, e.PlannedDuration, e.ActualDuration,
		e.DriftMinutes, e.CumulativeDrift, e.AffectedBlocksCount, e.Resolved, e.UserChoice, resolvedAt, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("drift event %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) GetDriftEvent(id string) (models.DriftEvent, error) {
	row := s.db.QueryRow(driftSelect+" WHERE id = ?", id)
	e, err := scanDriftEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DriftEvent{}, fmt.Errorf("drift event %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (s *SQLiteStore) GetDriftEventsForDate(date string) ([]models.DriftEvent, error) {
	return s.queryDriftEvents(driftSelect+" WHERE schedule_date = ? ORDER BY created_at", date)
}

func (s *SQLiteStore) GetUnresolvedDriftEvents(date string) ([]models.DriftEvent, error) {
	return s.queryDriftEvents(driftSelect+" WHERE schedule_date = ? AND resolved = 0 ORDER BY created_at", date)
}

func (s *SQLiteStore) queryDriftEvents(query string, args ...any) ([]models.DriftEvent, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DriftEvent
	for rows.Next() {
		e, err := scanDriftEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

const driftSelect = `
	SELECT id, schedule_date, block_start_time, block_title, planned_duration, actual_duration,
	       drift_minutes, cumulative_drift, affected_blocks_count, resolved, user_choice, created_at, resolved_at
	FROM drift_events`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (models.BlockFeedback, error) {
	var fb models.BlockFeedback
	var actual sql.NullInt64
	err := row.Scan(&fb.ScheduleDate, &fb.BlockStartTime, &fb.Completed, &fb.Skipped, &actual,
		&fb.SkipReason, &fb.EnergyRating, &fb.DifficultyRating, &fb.SubmittedAt)
	if err != nil {
		return models.BlockFeedback{}, err
	}
	if actual.Valid {
		v := int(actual.Int64)
		fb.ActualTimeSpent = &v
	}
	return fb, nil
}

func scanDriftEvent(row rowScanner) (models.DriftEvent, error) {
	var e models.DriftEvent
	var resolvedAt sql.NullString
	err := row.Scan(&e.ID, &e.ScheduleDate, &e.BlockStartTime, &e.BlockTitle, &e.PlannedDuration, &e.ActualDuration,
		&e.DriftMinutes, &e.CumulativeDrift, &e.AffectedBlocksCount, &e.Resolved, &e.UserChoice, &e.CreatedAt, &resolvedAt)
	if err != nil {
		return models.DriftEvent{}, err
	}
	if resolvedAt.Valid {
		e.ResolvedAt = &resolvedAt.String
	}
	return e, nil
}
