package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServer_StatusReturnsSnapshot(t *testing.T) {
	want := Snapshot{
		Team:        1234,
		Voltage:     12.34,
		CodePresent: true,
		ControlMode: "TeleOperated",
		Connected:   true,
	}

	s := New(func() Snapshot { return want })
	s.now = func() time.Time { return time.Unix(0, 0).UTC() }

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}

	var got Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	got.Timestamp = ""
	if got != want {
		t.Errorf("snapshot = %+v, want %+v", got, want)
	}
}

func TestServer_Healthz(t *testing.T) {
	s := New(func() Snapshot { return Snapshot{} })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}
