package store

import (
	"encoding/json"
	"log"
	"sort"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/wrenlake/med-minder/pkg/models"
)

// storageKey is the preferences key holding the serialized reminder list.
// The key is versioned so a future format change can migrate old data.
const storageKey = "medical_reminders_v1"

// ReminderStore holds all reminders and persists them as JSON in the
// application preferences. All mutating methods save immediately; there
// is no separate flush step.
type ReminderStore struct {
	mu        sync.RWMutex
	reminders map[string]*models.Reminder
	prefs     fyne.Preferences
}

// NewReminderStore loads any previously saved reminders from prefs.
func NewReminderStore(prefs fyne.Preferences) *ReminderStore {
	rs := &ReminderStore{
		reminders: make(map[string]*models.Reminder),
		prefs:     prefs,
	}
	rs.load()
	return rs
}

func (rs *ReminderStore) load() {
	raw := rs.prefs.String(storageKey)
	if raw == "" {
		return
	}

	var list []models.Reminder
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		// Corrupt data is not recoverable; start empty rather than crash.
		log.Printf("Failed to parse saved reminders, starting empty: %v", err)
		return
	}

	for i := range list {
		if list[i].ID == "" {
			continue
		}
		r := list[i]
		rs.reminders[r.ID] = &r
	}
	log.Printf("Loaded %d reminders", len(rs.reminders))
}

// save serializes the reminder list. Caller must hold rs.mu.
func (rs *ReminderStore) save() {
	list := rs.allLocked()
	raw, err := json.Marshal(list)
	if err != nil {
		log.Printf("Failed to serialize reminders: %v", err)
		return
	}
	rs.prefs.SetString(storageKey, string(raw))
}

// allLocked returns reminders sorted by anchor time, then ID for a
// stable order. Caller must hold rs.mu.
func (rs *ReminderStore) allLocked() []models.Reminder {
	list := make([]models.Reminder, 0, len(rs.reminders))
	for _, r := range rs.reminders {
		list = append(list, *r)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].DateTime.Equal(list[j].DateTime) {
			return list[i].DateTime.Before(list[j].DateTime)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// All returns a snapshot of every reminder, sorted by anchor time.
func (rs *ReminderStore) All() []models.Reminder {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.allLocked()
}

// Get returns the reminder with the given ID, or false if absent.
func (rs *ReminderStore) Get(id string) (models.Reminder, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	r, ok := rs.reminders[id]
	if !ok {
		return models.Reminder{}, false
	}
	return *r, true
}

// Upsert inserts or replaces a reminder and persists the change.
func (rs *ReminderStore) Upsert(r models.Reminder) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.reminders[r.ID] = &r
	rs.save()
}

// Delete removes a reminder by ID. Deleting an unknown ID is a no-op.
func (rs *ReminderStore) Delete(id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, ok := rs.reminders[id]; !ok {
		return
	}
	delete(rs.reminders, id)
	rs.save()
}

// Toggle flips a reminder's active flag and returns the new value.
func (rs *ReminderStore) Toggle(id string) (bool, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r, ok := rs.reminders[id]
	if !ok {
		return false, false
	}
	r.IsActive = !r.IsActive
	rs.save()
	return r.IsActive, true
}

// Count returns the number of stored reminders.
func (rs *ReminderStore) Count() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.reminders)
}
