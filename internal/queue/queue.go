// Package queue implements the in-memory appointment queue engine.
//
// One Engine instance owns the current day's appointment list and the
// serving flag. Every mutation happens under a single mutex covering the
// list update and the snapshot write, so the persisted file always reflects
// the latest in-memory state.
package queue

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zulandar/gatedesk/internal/models"
	"github.com/zulandar/gatedesk/internal/store"
)

// ErrValidation is returned when a required field is missing or empty.
// Handlers map it to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrNotFound is returned when no appointment with the given ID exists in
// the current day's list. Handlers map it to HTTP 404.
var ErrNotFound = errors.New("not found")

// Broadcaster receives a fresh display snapshot after every mutation that
// can change the display.
type Broadcaster interface {
	Broadcast(models.DisplaySnapshot)
}

// Default active-hours window: 08:30 inclusive to 18:00 exclusive.
const (
	DefaultOpenMinutes  = 8*60 + 30
	DefaultCloseMinutes = 18 * 60
	defaultDisplaySize  = 4
)

// Options configures an Engine.
type Options struct {
	Store        *store.Store
	Notifier     Broadcaster      // optional; nil disables broadcasts
	Now          func() time.Time // optional; defaults to time.Now
	DisplaySize  int              // optional; defaults to 4
	OpenMinutes  int              // optional; defaults to 08:30
	CloseMinutes int              // optional; defaults to 18:00
}

// Engine owns the appointment list for the day it is currently serving.
type Engine struct {
	mu           sync.Mutex
	store        *store.Store
	notifier     Broadcaster
	now          func() time.Time
	displaySize  int
	openMinutes  int
	closeMinutes int

	dayKey       string
	appointments []models.Appointment
	active       bool
}

// New loads today's snapshot from the store and returns a ready Engine.
// The day key is captured here and only advances at rollover, so mutations
// that straddle midnight still persist under the day the engine is serving.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("queue: store is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DisplaySize <= 0 {
		opts.DisplaySize = defaultDisplaySize
	}
	if opts.OpenMinutes == 0 && opts.CloseMinutes == 0 {
		opts.OpenMinutes = DefaultOpenMinutes
		opts.CloseMinutes = DefaultCloseMinutes
	}

	e := &Engine{
		store:        opts.Store,
		notifier:     opts.Notifier,
		now:          opts.Now,
		displaySize:  opts.DisplaySize,
		openMinutes:  opts.OpenMinutes,
		closeMinutes: opts.CloseMinutes,
	}
	now := e.now()
	e.dayKey = store.DateKey(now)
	e.appointments = e.store.LoadDay(e.dayKey)
	e.active = e.withinHours(now)
	return e, nil
}

// Create validates the fields, appends a new appointment with a fresh
// time-derived ID, persists the day snapshot, and broadcasts the display
// when the new entry is waiting.
func (e *Engine) Create(name, phone, licensePlate string, isOutbound bool) (models.Appointment, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	licensePlate = strings.TrimSpace(licensePlate)
	if name == "" {
		return models.Appointment{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if phone == "" {
		return models.Appointment{}, fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if licensePlate == "" {
		return models.Appointment{}, fmt.Errorf("%w: licensePlate is required", ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	id, err := generateID(now)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("queue: create: %w", err)
	}
	appt := models.Appointment{
		ID:           id,
		Name:         name,
		Phone:        phone,
		LicensePlate: strings.ToUpper(licensePlate),
		IsOutbound:   isOutbound,
		Timestamp:    now,
	}

	e.appointments = append(e.appointments, appt)
	if err := e.store.SaveDay(e.dayKey, e.appointments); err != nil {
		e.appointments = e.appointments[:len(e.appointments)-1]
		return models.Appointment{}, fmt.Errorf("queue: create: %w", err)
	}

	if !isOutbound {
		e.broadcastLocked()
	}
	return appt, nil
}

// MarkOutbound flags the appointment as departed, persists the snapshot,
// appends an outbound history entry, and broadcasts the display.
//
// Re-marking an already outbound appointment is allowed: it re-stamps
// OutboundTime and records another history entry, matching the behavior
// the desk clients rely on when a vehicle re-exits after a recall.
func (e *Engine) MarkOutbound(id string) (models.Appointment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i := range e.appointments {
		if e.appointments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Appointment{}, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}

	now := e.now()
	prevOutbound := e.appointments[idx].IsOutbound
	prevTime := e.appointments[idx].OutboundTime
	e.appointments[idx].IsOutbound = true
	e.appointments[idx].OutboundTime = &now

	if err := e.store.SaveDay(e.dayKey, e.appointments); err != nil {
		e.appointments[idx].IsOutbound = prevOutbound
		e.appointments[idx].OutboundTime = prevTime
		return models.Appointment{}, fmt.Errorf("queue: mark outbound %s: %w", id, err)
	}

	appt := e.appointments[idx]
	entry := models.HistoryEntry{
		Action:      models.ActionOutbound,
		RecordedAt:  now,
		Appointment: &appt,
	}
	if err := e.store.AppendHistory(e.dayKey, entry); err != nil {
		// Roll the flag back and restore the snapshot so memory, disk, and
		// history stay in step; the caller can retry the whole mark.
		e.appointments[idx].IsOutbound = prevOutbound
		e.appointments[idx].OutboundTime = prevTime
		if saveErr := e.store.SaveDay(e.dayKey, e.appointments); saveErr != nil {
			log.Printf("queue: restore snapshot after history failure: %v", saveErr)
		}
		return models.Appointment{}, fmt.Errorf("queue: mark outbound %s: %w", id, err)
	}

	e.broadcastLocked()
	return appt, nil
}

// ListWaiting returns all non-outbound appointments in insertion order.
func (e *Engine) ListWaiting() []models.Appointment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waitingLocked()
}

// ComputeDisplay returns the current display snapshot: waiting appointments
// sorted ascending by creation time, capped at the display size. It is
// recomputed fresh on every call.
func (e *Engine) ComputeDisplay() models.DisplaySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayLocked()
}

// RefreshActiveStatus recomputes the serving flag from the given wall-clock
// time and returns it. A broadcast fires only when the flag changes.
func (e *Engine) RefreshActiveStatus(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := e.withinHours(now)
	if active != e.active {
		e.active = active
		e.broadcastLocked()
	}
	return active
}

// Now returns the engine's clock reading. Handlers use it instead of
// time.Now so responses stay deterministic under an injected clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Active reports the current serving flag without recomputing it.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Rollover archives the entire current list as one daily_save history entry
// under the outgoing day key, clears the queue, advances the day key, and
// persists the empty snapshot for the new day.
func (e *Engine) Rollover() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	entry := models.HistoryEntry{
		Action:       models.ActionDailySave,
		RecordedAt:   now,
		Appointments: e.appointments,
	}
	if err := e.store.AppendHistory(e.dayKey, entry); err != nil {
		return fmt.Errorf("queue: rollover archive %s: %w", e.dayKey, err)
	}

	e.appointments = []models.Appointment{}
	e.dayKey = store.DateKey(now)
	if err := e.store.SaveDay(e.dayKey, e.appointments); err != nil {
		return fmt.Errorf("queue: rollover save %s: %w", e.dayKey, err)
	}

	e.broadcastLocked()
	return nil
}

// History returns the history log for the day the engine is serving.
func (e *Engine) History() []models.HistoryEntry {
	e.mu.Lock()
	key := e.dayKey
	e.mu.Unlock()
	return e.store.LoadHistory(key)
}

// DayKey returns the date key the engine is currently persisting under.
func (e *Engine) DayKey() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dayKey
}

func (e *Engine) waitingLocked() []models.Appointment {
	waiting := make([]models.Appointment, 0, len(e.appointments))
	for _, a := range e.appointments {
		if !a.IsOutbound {
			waiting = append(waiting, a)
		}
	}
	return waiting
}

func (e *Engine) displayLocked() models.DisplaySnapshot {
	waiting := e.waitingLocked()
	total := len(waiting)
	sort.SliceStable(waiting, func(i, j int) bool {
		return waiting[i].Timestamp.Before(waiting[j].Timestamp)
	})
	if len(waiting) > e.displaySize {
		waiting = waiting[:e.displaySize]
	}
	return models.DisplaySnapshot{
		Appointments: waiting,
		TotalWaiting: total,
		SystemActive: e.active,
	}
}

func (e *Engine) withinHours(now time.Time) bool {
	m := now.Hour()*60 + now.Minute()
	return m >= e.openMinutes && m < e.closeMinutes
}

func (e *Engine) broadcastLocked() {
	if e.notifier == nil {
		return
	}
	e.notifier.Broadcast(e.displayLocked())
}

// generateID builds a time-derived unique appointment ID: the creation time
// in unix milliseconds plus a short random hex suffix.
func generateID(now time.Time) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate ID: %w", err)
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), hex.EncodeToString(b)[:5]), nil
}
