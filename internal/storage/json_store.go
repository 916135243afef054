package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/lbradley/daybook/internal/models"
)

// fileStore is the on-disk shape of the JSON backend.
type fileStore struct {
	Version     int                             `json:"version"`
	Preferences *models.Preferences             `json:"preferences,omitempty"`
	Commitments map[string]models.Commitment    `json:"commitments"`
	Deadlines   map[string]models.Deadline      `json:"deadlines"`
	Schedules   map[string]models.DailySchedule `json:"schedules"`
	Feedback    map[string]models.BlockFeedback `json:"feedback"`     // keyed by date|start
	DriftEvents map[string]models.DriftEvent    `json:"drift_events"` // keyed by id
}

// JSONStore is a single-file JSON backend. Handy for tests and small
// installs; SQLite is the default for real use.
type JSONStore struct {
	path  string
	mu    sync.Mutex
	store *fileStore
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = emptyFileStore()
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'daybook init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &fileStore{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	ensureMaps(s.store)
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) GetPreferences() (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil || s.store.Preferences == nil {
		return models.Preferences{}, ErrNotFound
	}
	return *s.store.Preferences, nil
}

func (s *JSONStore) SavePreferences(prefs models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Preferences = &prefs
	return s.save()
}

func (s *JSONStore) AddCommitment(c models.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Commitments[c.ID] = c
	return s.save()
}

func (s *JSONStore) GetCommitment(id string) (models.Commitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return models.Commitment{}, fmt.Errorf("storage not loaded")
	}
	c, ok := s.store.Commitments[id]
	if !ok {
		return models.Commitment{}, fmt.Errorf("commitment %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (s *JSONStore) GetCommitmentsForDate(date string) ([]models.Commitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	var out []models.Commitment
	for _, c := range s.store.Commitments {
		if c.Date == date {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out, nil
}

func (s *JSONStore) UpdateCommitment(c models.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.store.Commitments[c.ID]; !ok {
		return fmt.Errorf("commitment %s: %w", c.ID, ErrNotFound)
	}
	s.store.Commitments[c.ID] = c
	return s.save()
}

func (s *JSONStore) DeleteCommitment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.store.Commitments[id]; !ok {
		return fmt.Errorf("commitment %s: %w", id, ErrNotFound)
	}
	delete(s.store.Commitments, id)
	return s.save()
}

func (s *JSONStore) AddDeadline(d models.Deadline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Deadlines[d.ID] = d
	return s.save()
}

func (s *JSONStore) GetDeadlines() ([]models.Deadline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	out := make([]models.Deadline, 0, len(s.store.Deadlines))
	for _, d := range s.store.Deadlines {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DueDate < out[j].DueDate
	})
	return out, nil
}

func (s *JSONStore) DeleteDeadline(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.store.Deadlines[id]; !ok {
		return fmt.Errorf("deadline %s: %w", id, ErrNotFound)
	}
	delete(s.store.Deadlines, id)
	return s.save()
}

func (s *JSONStore) SaveSchedule(sched models.DailySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Schedules[sched.Date] = sched
	return s.save()
}

func (s *JSONStore) GetSchedule(date string) (models.DailySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return models.DailySchedule{}, fmt.Errorf("storage not loaded")
	}
	sched, ok := s.store.Schedules[date]
	if !ok || sched.DeletedAt != nil {
		return models.DailySchedule{}, fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
	}
	return sched, nil
}

func (s *JSONStore) DeleteSchedule(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.store.Schedules[date]; !ok {
		return fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
	}
	delete(s.store.Schedules, date)
	return s.save()
}

func (s *JSONStore) SaveFeedback(fb models.BlockFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Feedback[feedbackKey(fb.ScheduleDate, fb.BlockStartTime)] = fb
	return s.save()
}

func (s *JSONStore) GetFeedback(date, blockStartTime string) (models.BlockFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return models.BlockFeedback{}, fmt.Errorf("storage not loaded")
	}
	fb, ok := s.store.Feedback[feedbackKey(date, blockStartTime)]
	if !ok {
		return models.BlockFeedback{}, fmt.Errorf("feedback for %s %s: %w", date, blockStartTime, ErrNotFound)
	}
	return fb, nil
}

func (s *JSONStore) GetFeedbackForDate(date string) ([]models.BlockFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	var out []models.BlockFeedback
	for _, fb := range s.store.Feedback {
		if fb.ScheduleDate == date {
			out = append(out, fb)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BlockStartTime < out[j].BlockStartTime
	})
	return out, nil
}

func (s *JSONStore) AddDriftEvent(e models.DriftEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.store.DriftEvents[e.ID]; ok {
		return fmt.Errorf("drift event %s already exists", e.ID)
	}
	s.store.DriftEvents[e.ID] = e
	return s.save()
}

func (s *JSONStore) UpdateDriftEvent(e models.DriftEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.store.DriftEvents[e.ID]; !ok {
		return fmt.Errorf("drift event %s: %w", e.ID, ErrNotFound)
	}
	s.store.DriftEvents[e.ID] = e
	return s.save()
}

func (s *JSONStore) GetDriftEvent(id string) (models.DriftEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return models.DriftEvent{}, fmt.Errorf("storage not loaded")
	}
	e, ok := s.store.DriftEvents[id]
	if !ok {
		return models.DriftEvent{}, fmt.Errorf("drift event %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *JSONStore) GetDriftEventsForDate(date string) ([]models.DriftEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	return s.eventsForDate(date, false), nil
}

func (s *JSONStore) GetUnresolvedDriftEvents(date string) ([]models.DriftEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	return s.eventsForDate(date, true), nil
}

func (s *JSONStore) eventsForDate(date string, unresolvedOnly bool) []models.DriftEvent {
	var out []models.DriftEvent
	for _, e := range s.store.DriftEvents {
		if e.ScheduleDate != date {
			continue
		}
		if unresolvedOnly && e.Resolved {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func feedbackKey(date, start string) string {
	return date + "|" + start
}

func emptyFileStore() *fileStore {
	fs := &fileStore{Version: 1}
	ensureMaps(fs)
	return fs
}

func ensureMaps(fs *fileStore) {
	if fs.Commitments == nil {
		fs.Commitments = make(map[string]models.Commitment)
	}
	if fs.Deadlines == nil {
		fs.Deadlines = make(map[string]models.Deadline)
	}
	if fs.Schedules == nil {
		fs.Schedules = make(map[string]models.DailySchedule)
	}
	if fs.Feedback == nil {
		fs.Feedback = make(map[string]models.BlockFeedback)
	}
	if fs.DriftEvents == nil {
		fs.DriftEvents = make(map[string]models.DriftEvent)
	}
}
