package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAppointment_JSONOmitsUnsetOutboundTime(t *testing.T) {
	a := Appointment{
		ID:           "1756166400000-a1b2c",
		Name:         "张三",
		Phone:        "13800138000",
		LicensePlate: "京A12345",
		Timestamp:    time.Date(2026, 8, 26, 9, 0, 0, 0, time.Local),
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), "outboundTime") {
		t.Errorf("marshaled appointment contains outboundTime: %s", data)
	}
	if !strings.Contains(string(data), `"licensePlate":"京A12345"`) {
		t.Errorf("marshaled appointment missing licensePlate: %s", data)
	}
	if !strings.Contains(string(data), `"isOutbound":false`) {
		t.Errorf("marshaled appointment missing isOutbound: %s", data)
	}
}

func TestHistoryEntry_Shapes(t *testing.T) {
	now := time.Date(2026, 8, 26, 17, 30, 0, 0, time.Local)
	appt := Appointment{ID: "x", Name: "n", Phone: "p", LicensePlate: "L1"}

	outbound := HistoryEntry{Action: ActionOutbound, RecordedAt: now, Appointment: &appt}
	data, err := json.Marshal(outbound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"appointment":`) {
		t.Errorf("outbound entry missing appointment: %s", data)
	}
	if strings.Contains(string(data), `"appointments":`) {
		t.Errorf("outbound entry should not carry appointments list: %s", data)
	}

	daily := HistoryEntry{Action: ActionDailySave, RecordedAt: now, Appointments: []Appointment{appt}}
	data, err = json.Marshal(daily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"appointments":`) {
		t.Errorf("daily_save entry missing appointments list: %s", data)
	}
}
