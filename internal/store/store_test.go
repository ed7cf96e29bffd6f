package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zulandar/gatedesk/internal/models"
)

func testAppointments(n int) []models.Appointment {
	base := time.Date(2026, 8, 26, 9, 0, 0, 0, time.Local)
	appts := make([]models.Appointment, 0, n)
	for i := 0; i < n; i++ {
		appts = append(appts, models.Appointment{
			ID:           time.Now().Format("150405") + "-" + string(rune('a'+i)),
			Name:         "Visitor " + string(rune('A'+i)),
			Phone:        "13800138000",
			LicensePlate: "京A12345",
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		})
	}
	return appts
}

func TestDateKey(t *testing.T) {
	got := DateKey(time.Date(2026, 8, 26, 23, 59, 0, 0, time.Local))
	if got != "2026-08-26" {
		t.Errorf("DateKey = %q, want %q", got, "2026-08-26")
	}
}

func TestSaveDay_LoadDay_RoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "data"))
	want := testAppointments(5)

	if err := s.SaveDay("2026-08-26", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.LoadDay("2026-08-26")
	if len(got) != len(want) {
		t.Fatalf("len(LoadDay) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("LoadDay[%d].ID = %q, want %q", i, got[i].ID, want[i].ID)
		}
		if got[i].Name != want[i].Name {
			t.Errorf("LoadDay[%d].Name = %q, want %q", i, got[i].Name, want[i].Name)
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("LoadDay[%d].Timestamp = %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
}

func TestSaveDay_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := New(dir)

	if err := s.SaveDay("2026-08-26", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
	// A second save into the existing directory must also succeed.
	if err := s.SaveDay("2026-08-26", testAppointments(1)); err != nil {
		t.Fatalf("unexpected error on second save: %v", err)
	}
}

func TestLoadDay_MissingFile(t *testing.T) {
	s := New(t.TempDir())
	got := s.LoadDay("2026-08-26")
	if got == nil {
		t.Fatal("LoadDay returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("len(LoadDay) = %d, want 0", len(got))
	}
}

func TestLoadDay_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	path := filepath.Join(dir, "appointments-2026-08-26.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	got := s.LoadDay("2026-08-26")
	if len(got) != 0 {
		t.Errorf("len(LoadDay) = %d, want 0 for corrupt file", len(got))
	}
}

func TestAppendHistory_OrderPreserved(t *testing.T) {
	s := New(t.TempDir())
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.Local)
	appts := testAppointments(2)

	first := models.HistoryEntry{Action: models.ActionOutbound, RecordedAt: now, Appointment: &appts[0]}
	second := models.HistoryEntry{Action: models.ActionDailySave, RecordedAt: now.Add(time.Hour), Appointments: appts}

	if err := s.AppendHistory("2026-08-26", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AppendHistory("2026-08-26", second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.LoadHistory("2026-08-26")
	if len(got) != 2 {
		t.Fatalf("len(LoadHistory) = %d, want 2", len(got))
	}
	if got[0].Action != models.ActionOutbound {
		t.Errorf("entry[0].Action = %q, want %q", got[0].Action, models.ActionOutbound)
	}
	if got[0].Appointment == nil || got[0].Appointment.ID != appts[0].ID {
		t.Errorf("entry[0].Appointment = %+v, want ID %q", got[0].Appointment, appts[0].ID)
	}
	if got[1].Action != models.ActionDailySave {
		t.Errorf("entry[1].Action = %q, want %q", got[1].Action, models.ActionDailySave)
	}
	if len(got[1].Appointments) != 2 {
		t.Errorf("len(entry[1].Appointments) = %d, want 2", len(got[1].Appointments))
	}
}

func TestLoadHistory_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if got := s.LoadHistory("2026-08-26"); got == nil || len(got) != 0 {
		t.Errorf("LoadHistory(missing) = %v, want empty slice", got)
	}

	path := filepath.Join(dir, "history-2026-08-26.json")
	if err := os.WriteFile(path, []byte("[broken"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if got := s.LoadHistory("2026-08-26"); len(got) != 0 {
		t.Errorf("len(LoadHistory) = %d, want 0 for corrupt file", len(got))
	}
}

func TestAppendHistory_CorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	path := filepath.Join(dir, "history-2026-08-26.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	entry := models.HistoryEntry{Action: models.ActionOutbound, RecordedAt: time.Now()}
	if err := s.AppendHistory("2026-08-26", entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.LoadHistory("2026-08-26")
	if len(got) != 1 {
		t.Errorf("len(LoadHistory) = %d, want 1 (corrupt log restarted)", len(got))
	}
}
