package alert

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/k-devoe/riverWatch/internal/types"
)

// fixedClock implements types.Clock for deterministic tests.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeForecastStore struct {
	maxPoint *types.ForecastPoint
	err      error
}

func (s *fakeForecastStore) ReplaceAll(ctx context.Context, points []types.ForecastPoint) error {
	return nil
}

func (s *fakeForecastStore) MaxHeightPoint(ctx context.Context) (*types.ForecastPoint, error) {
	return s.maxPoint, s.err
}

type fakeUserDirectory struct {
	users []types.User
	err   error
}

func (d *fakeUserDirectory) ListUsers(ctx context.Context) ([]types.User, error) {
	return d.users, d.err
}

type fakeAlertStore struct {
	peaks    map[string]*types.AlertRecord
	recorded []types.AlertRecord
	readErr  error
	writeErr error
}

func (s *fakeAlertStore) LatestPeak(ctx context.Context, userID string) (*types.AlertRecord, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.peaks[userID], nil
}

func (s *fakeAlertStore) RecordPeak(ctx context.Context, userID string, point types.ForecastPoint) (*types.AlertRecord, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	record := types.AlertRecord{
		ID:        "alr_" + userID,
		UserID:    userID,
		Timestamp: point.Timestamp,
		Height:    point.Height,
		Kind:      types.AlertKindPeak,
	}
	s.recorded = append(s.recorded, record)
	return &record, nil
}

type fakeNotifier struct {
	sent   map[string][]types.AlertRecord
	failFo map[string]error
}

func (n *fakeNotifier) Send(ctx context.Context, user types.User, alerts []types.AlertRecord) error {
	if err := n.failFo[user.ID]; err != nil {
		return err
	}
	if n.sent == nil {
		n.sent = make(map[string][]types.AlertRecord)
	}
	n.sent[user.ID] = append(n.sent[user.ID], alerts...)
	return nil
}

// noonPacific is 12:00 local in December (PST), inside the 05-20 window.
var noonPacific = time.Date(2022, 12, 18, 20, 0, 0, 0, time.UTC)

func testOrchestrator(forecasts *fakeForecastStore, users *fakeUserDirectory, alerts *fakeAlertStore, notifier *fakeNotifier, now time.Time) *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		Forecasts: forecasts,
		Users:     users,
		Alerts:    alerts,
		Notifier:  notifier,
		Clock:     fixedClock{now: now},
		Logger:    slog.New(slog.DiscardHandler),
	})
}

func subscriber(id string) types.User {
	u := thresholdUser()
	u.ID = id
	u.StartHour = 5
	u.EndHour = 20
	return u
}

func TestEvaluateAndNotify_FirstPeakFires(t *testing.T) {
	maxPoint := &types.ForecastPoint{Timestamp: noonPacific.Add(48 * time.Hour), Height: 4.69}
	forecasts := &fakeForecastStore{maxPoint: maxPoint}
	users := &fakeUserDirectory{users: []types.User{subscriber("usr_1")}}
	alerts := &fakeAlertStore{peaks: map[string]*types.AlertRecord{}}
	notifier := &fakeNotifier{}

	o := testOrchestrator(forecasts, users, alerts, notifier, noonPacific)

	dispatched, err := o.EvaluateAndNotify(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatched) != 1 {
		t.Fatalf("dispatched %d alerts, want 1", len(dispatched))
	}
	if dispatched[0].Height != 4.69 {
		t.Errorf("alert height = %v, want 4.69", dispatched[0].Height)
	}
	if len(alerts.recorded) != 1 {
		t.Errorf("recorded %d peaks, want 1", len(alerts.recorded))
	}
	if got := notifier.sent["usr_1"]; len(got) != 1 {
		t.Errorf("notifier received %d alerts for usr_1, want 1", len(got))
	}
}

func TestEvaluateAndNotify_BelowBaseHeightSkips(t *testing.T) {
	maxPoint := &types.ForecastPoint{Timestamp: noonPacific.Add(24 * time.Hour), Height: 2.48}
	forecasts := &fakeForecastStore{maxPoint: maxPoint}

	user := subscriber("usr_1")
	user.HeightBase = 3.0
	users := &fakeUserDirectory{users: []types.User{user}}
	alerts := &fakeAlertStore{peaks: map[string]*types.AlertRecord{}}
	notifier := &fakeNotifier{}

	o := testOrchestrator(forecasts, users, alerts, notifier, noonPacific)

	dispatched, err := o.EvaluateAndNotify(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatched) != 0 {
		t.Errorf("dispatched %d alerts, want 0 (max below base height)", len(dispatched))
	}
}

func TestEvaluateAndNotify_OutsideWindowSkips(t *testing.T) {
	// 12:30 UTC = 04:30 PST, before the 05:00 window start.
	earlyMorning := time.Date(2022, 12, 18, 12, 30, 0, 0, time.UTC)

	maxPoint := &types.ForecastPoint{Timestamp: earlyMorning.Add(24 * time.Hour), Height: 9.99}
	forecasts := &fakeForecastStore{maxPoint: maxPoint}
	users := &fakeUserDirectory{users: []types.User{subscriber("usr_1")}}
	alerts := &fakeAlertStore{peaks: map[string]*types.AlertRecord{}}
	notifier := &fakeNotifier{}

	o := testOrchestrator(forecasts, users, alerts, notifier, earlyMorning)

	dispatched, err := o.EvaluateAndNotify(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatched) != 0 {
		t.Errorf("dispatched %d alerts, want 0 regardless of height outside the window", len(dispatched))
	}
}

func TestEvaluateAndNotify_DispatchFailureIsolatedPerUser(t *testing.T) {
	maxPoint := &types.ForecastPoint{Timestamp: noonPacific.Add(48 * time.Hour), Height: 4.69}
	forecasts := &fakeForecastStore{maxPoint: maxPoint}
	users := &fakeUserDirectory{users: []types.User{subscriber("usr_1"), subscriber("usr_2")}}
	alerts := &fakeAlertStore{peaks: map[string]*types.AlertRecord{}}
	notifier := &fakeNotifier{failFo: map[string]error{"usr_1": errors.New("sms gateway down")}}

	o := testOrchestrator(forecasts, users, alerts, notifier, noonPacific)

	dispatched, err := o.EvaluateAndNotify(context.Background())
	if err != nil {
		t.Fatalf("dispatch failure must not fail the batch: %v", err)
	}
	// Both records persist: the failed dispatch still counts as alerted.
	if len(dispatched) != 2 {
		t.Fatalf("dispatched %d alert records, want 2", len(dispatched))
	}
	if len(notifier.sent["usr_2"]) != 1 {
		t.Error("usr_2 must still be notified after usr_1's dispatch failed")
	}
}

func TestEvaluateAndNotify_InvalidUserSkipped(t *testing.T) {
	maxPoint := &types.ForecastPoint{Timestamp: noonPacific.Add(48 * time.Hour), Height: 4.69}
	forecasts := &fakeForecastStore{maxPoint: maxPoint}

	broken := subscriber("usr_broken")
	broken.TimeZone = "Mars/Olympus_Mons"
	users := &fakeUserDirectory{users: []types.User{broken, subscriber("usr_2")}}
	alerts := &fakeAlertStore{peaks: map[string]*types.AlertRecord{}}
	notifier := &fakeNotifier{}

	o := testOrchestrator(forecasts, users, alerts, notifier, noonPacific)

	dispatched, err := o.EvaluateAndNotify(context.Background())
	if err != nil {
		t.Fatalf("invalid user config must not fail the batch: %v", err)
	}
	if len(dispatched) != 1 || dispatched[0].UserID != "usr_2" {
		t.Errorf("want exactly one alert for usr_2, got %v", dispatched)
	}
}

func TestEvaluateAndNotify_StorageFailureIsFatal(t *testing.T) {
	maxPoint := &types.ForecastPoint{Timestamp: noonPacific.Add(48 * time.Hour), Height: 4.69}
	forecasts := &fakeForecastStore{maxPoint: maxPoint}
	users := &fakeUserDirectory{users: []types.User{subscriber("usr_1")}}
	alerts := &fakeAlertStore{readErr: errors.New("connection refused")}
	notifier := &fakeNotifier{}

	o := testOrchestrator(forecasts, users, alerts, notifier, noonPacific)

	if _, err := o.EvaluateAndNotify(context.Background()); err == nil {
		t.Fatal("alert store read failure must propagate")
	}
}

func TestEvaluateAndNotify_EmptyForecastSet(t *testing.T) {
	forecasts := &fakeForecastStore{maxPoint: nil}
	users := &fakeUserDirectory{users: []types.User{subscriber("usr_1")}}
	alerts := &fakeAlertStore{}
	notifier := &fakeNotifier{}

	o := testOrchestrator(forecasts, users, alerts, notifier, noonPacific)

	dispatched, err := o.EvaluateAndNotify(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatched != nil {
		t.Errorf("want no alerts with no stored forecast, got %v", dispatched)
	}
}
