package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"carpark/backend/services/sessions-service/internal/models"
	"carpark/backend/services/sessions-service/internal/service"
)

type fakeDetector struct {
	plate string
	ok    bool
	err   error
}

func (f *fakeDetector) DetectPlate(context.Context, string) (string, bool, error) {
	return f.plate, f.ok, f.err
}

type memStore struct {
	open []models.ParkingSession
}

func (m *memStore) CreateEntry(_ context.Context, session *models.ParkingSession) error {
	m.open = append(m.open, *session)
	return nil
}

func (m *memStore) FindOpenByPlate(_ context.Context, plate string) ([]models.ParkingSession, error) {
	var matched []models.ParkingSession
	for _, s := range m.open {
		if s.CarRegistration == plate && s.ExitTime == nil {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (m *memStore) CloseSession(_ context.Context, open *models.ParkingSession, exitTime, durationHours int64, paymentDue float64) error {
	for i := range m.open {
		if m.open[i].SessionID == open.SessionID {
			m.open[i].ExitTime = &exitTime
			m.open[i].DurationHours = &durationHours
			m.open[i].PaymentDue = &paymentDue
		}
	}
	return nil
}

func (m *memStore) LatestByPlate(_ context.Context, plate string) (*models.ParkingSession, error) {
	for i := range m.open {
		if m.open[i].CarRegistration == plate {
			return &m.open[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) ListOpen(context.Context, int) ([]models.ParkingSession, error) {
	return m.open, nil
}

func postDetection(t *testing.T, handler *DetectionsHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/internal/detections", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestDetectionsHandlerEntryThenExit(t *testing.T) {
	store := &memStore{}
	svc := service.NewSessionsService(store, 2, nil, zap.NewNop())
	handler := NewDetectionsHandler(&fakeDetector{plate: "AB12CDE", ok: true}, svc, zap.NewNop())

	rec := postDetection(t, handler, `{"image_ref":"entries/1.jpg","observed_at":1000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("entry status = %d, body %s", rec.Code, rec.Body.String())
	}
	var entry service.SessionOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry outcome: %v", err)
	}
	if entry.Kind != service.OutcomeOpened {
		t.Fatalf("entry kind = %q", entry.Kind)
	}

	rec = postDetection(t, handler, `{"image_ref":"exits/1.jpg","observed_at":5000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("exit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var exit service.SessionOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &exit); err != nil {
		t.Fatalf("decode exit outcome: %v", err)
	}
	if exit.Kind != service.OutcomeClosed {
		t.Fatalf("exit kind = %q", exit.Kind)
	}
	if exit.SessionID != entry.SessionID {
		t.Errorf("exit closed %q, want %q", exit.SessionID, entry.SessionID)
	}
	if exit.DurationHours != 2 || exit.PaymentDue != 4 {
		t.Errorf("billed %dh / %v, want 2h / 4", exit.DurationHours, exit.PaymentDue)
	}
}

func TestDetectionsHandlerNoPlate(t *testing.T) {
	svc := service.NewSessionsService(&memStore{}, 2, nil, zap.NewNop())
	handler := NewDetectionsHandler(&fakeDetector{ok: false}, svc, zap.NewNop())

	rec := postDetection(t, handler, `{"image_ref":"entries/1.jpg"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no registration plate detected") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDetectionsHandlerMissingImageRef(t *testing.T) {
	svc := service.NewSessionsService(&memStore{}, 2, nil, zap.NewNop())
	handler := NewDetectionsHandler(&fakeDetector{plate: "AB12CDE", ok: true}, svc, zap.NewNop())

	rec := postDetection(t, handler, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
