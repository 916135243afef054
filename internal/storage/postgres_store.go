package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"

	"github.com/lbradley/daybook/internal/migration"
	"github.com/lbradley/daybook/internal/models"
)

// PostgresStore backs the engine with a PostgreSQL database. The
// connection string comes from the OS keyring, never from config files.
type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{connStr: connStr}
}

func (s *PostgresStore) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *PostgresStore) Init() error {
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	runner := migration.NewRunner(s.db, PostgresMigrations())
	if _, err := runner.Apply(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.open(); err != nil {
		return err
	}
	runner := migration.NewRunner(s.db, PostgresMigrations())
	return runner.Validate()
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) GetPreferences() (models.Preferences, error) {
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

func (s *PostgresStore) SavePreferences(prefs models.Preferences) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO preferences (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`)
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

func (s *PostgresStore) AddCommitment(c models.Commitment) error {
	_, err := s.db.Exec(`
		INSERT INTO commitments (id, date, start_time, end_time, title, type, course_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date, start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time,
			title = EXCLUDED.title, type = EXCLUDED.type, course_id = EXCLUDED.course_id`,
		c.ID, c.Date, c.Start, c.End, c.Title, c.Type, c.CourseID)
	return err
}

func (s *PostgresStore) GetCommitment(id string) (models.Commitment, error) {
	row := s.db.QueryRow(`
		SELECT id, date, start_time, end_time, title, type, course_id
		FROM commitments WHERE id = $1`, id)

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

func (s *PostgresStore) GetCommitmentsForDate(date string) ([]models.Commitment, error) {
	rows, err := s.db.Query(`
		SELECT id, date, start_time, end_time, title, type, course_id
		FROM commitments WHERE date = $1 ORDER BY start_time`, date)
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

func (s *PostgresStore) UpdateCommitment(c models.Commitment) error {
	res, err := s.db.Exec(`
		UPDATE commitments SET date = $1, start_time = $2, end_time = $3, title = $4, type = $5, course_id = $6
		WHERE id = $7`,
		c.Date, c.Start, c.End, c.Title, c.Type, c.CourseID, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("commitment %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteCommitment(id string) error {
	res, err := s.db.Exec("DELETE FROM commitments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("commitment %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) AddDeadline(d models.Deadline) error {
	_, err := s.db.Exec(`
		INSERT INTO deadlines (id, title, type, due_date, course_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, type = EXCLUDED.type, due_date = EXCLUDED.due_date, course_id = EXCLUDED.course_id`,
		d.ID, d.Title, d.Type, d.DueDate, d.CourseID)
	return err
}

func (s *PostgresStore) GetDeadlines() ([]models.Deadline, error) {
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

func (s *PostgresStore) DeleteDeadline(id string) error {
	res, err := s.db.Exec("DELETE FROM deadlines WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deadline %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) SaveSchedule(sched models.DailySchedule) error {
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
		INSERT INTO schedules (date, ai_reasoning, source, deleted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE SET
			ai_reasoning = EXCLUDED.ai_reasoning, source = EXCLUDED.source, deleted_at = EXCLUDED.deleted_at`,
		sched.Date, sched.AIReasoning, sched.Source, deletedAt); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM schedule_blocks WHERE schedule_date = $1", sched.Date); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO schedule_blocks (schedule_date, start_time, end_time, title, type, description, course_code, priority, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
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

func (s *PostgresStore) GetSchedule(date string) (models.DailySchedule, error) {
	row := s.db.QueryRow(`
		SELECT date, ai_reasoning, source, deleted_at FROM schedules WHERE date = $1`, date)

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
		FROM schedule_blocks WHERE schedule_date = $1 ORDER BY start_time`, date)
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

func (s *PostgresStore) DeleteSchedule(date string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM schedules WHERE date = $1", date)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
	}
	if _, err := tx.Exec("DELETE FROM schedule_blocks WHERE schedule_date = $1", date); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) SaveFeedback(fb models.BlockFeedback) error {
	var actual sql.NullInt64
	if fb.ActualTimeSpent != nil {
		actual = sql.NullInt64{Int64: int64(*fb.ActualTimeSpent), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO block_feedback
			(schedule_date, block_start_time, completed, skipped, actual_time_spent, skip_reason, energy_rating, difficulty_rating, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (schedule_date, block_start_time) DO UPDATE SET
			completed = EXCLUDED.completed, skipped = EXCLUDED.skipped,
			actual_time_spent = EXCLUDED.actual_time_spent, skip_reason = EXCLUDED.skip_reason,
			energy_rating = EXCLUDED.energy_rating, difficulty_rating = EXCLUDED.difficulty_rating,
			submitted_at = EXCLUDED.submitted_at`,
		fb.ScheduleDate, fb.BlockStartTime, fb.Completed, fb.Skipped, actual, fb.SkipReason, fb.EnergyRating, fb.DifficultyRating, fb.SubmittedAt)
	return err
}

func (s *PostgresStore) GetFeedback(date, blockStartTime string) (models.BlockFeedback, error) {
	row := s.db.QueryRow(`
		SELECT schedule_date, block_start_time, completed, skipped, actual_time_spent, skip_reason, energy_rating, difficulty_rating, submitted_at
		FROM block_feedback WHERE schedule_date = $1 AND block_start_time = $2`, date, blockStartTime)
	fb, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BlockFeedback{}, fmt.Errorf("feedback for %s %s: %w", date, blockStartTime, ErrNotFound)
	}
	return fb, err
}

func (s *PostgresStore) GetFeedbackForDate(date string) ([]models.BlockFeedback, error) {
	rows, err := s.db.Query(`
		SELECT schedule_date, block_start_time, completed, skipped, actual_time_spent, skip_reason, energy_rating, difficulty_rating, submitted_at
		FROM block_feedback WHERE schedule_date = $1 ORDER BY block_start_time`, date)
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

func (s *PostgresStore) AddDriftEvent(e models.DriftEvent) error {
	var resolvedAt sql.NullString
	if e.ResolvedAt != nil {
		resolvedAt = sql.NullString{String: *e.ResolvedAt, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO drift_events
			(id, schedule_date, block_start_time, block_title, planned_duration, actual_duration,
			 drift_minutes, cumulative_drift, affected_blocks_count, resolved, user_choice, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.ScheduleDate, e.BlockStartTime, e.BlockTitle, e.PlannedDuration, e.ActualDuration,
		e.DriftMinutes, e.CumulativeDrift, e.AffectedBlocksCount, e.Resolved, e.UserChoice, e.CreatedAt, resolvedAt)
	return err
}

func (s *PostgresStore) UpdateDriftEvent(e models.DriftEvent) error {
	var resolvedAt sql.NullString
	if e.ResolvedAt != nil {
		resolvedAt = sql.NullString{String: *e.ResolvedAt, Valid: true}
	}
	res, err := s.db.Exec(`
		UPDATE drift_events SET
			schedule_date = $1, block_start_time = $2, block_title = $3, planned_duration = $4, actual_duration = $5,
			drift_minutes = $6, cumulative_drift = $7, affected_blocks_count = $8, resolved = $9, user_choice = $10, resolved_at = $11
		WHERE id = $12`,
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

func (s *PostgresStore) GetDriftEvent(id string) (models.DriftEvent, error) {
	row := s.db.QueryRow(driftSelect+" WHERE id = $1", id)
	e, err := scanDriftEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DriftEvent{}, fmt.Errorf("drift event %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (s *PostgresStore) GetDriftEventsForDate(date string) ([]models.DriftEvent, error) {
	return s.queryDriftEvents(driftSelect+" WHERE schedule_date = $1 ORDER BY created_at", date)
}

func (s *PostgresStore) GetUnresolvedDriftEvents(date string) ([]models.DriftEvent, error) {
	return s.queryDriftEvents(driftSelect+" WHERE schedule_date = $1 AND resolved = FALSE ORDER BY created_at", date)
}

func (s *PostgresStore) queryDriftEvents(query string, args ...any) ([]models.DriftEvent, error) {
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

func (s *PostgresStore) GetConfigPath() string {
	return "postgres"
}
