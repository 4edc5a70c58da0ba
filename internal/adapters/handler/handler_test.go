package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/AchilleasB/membership-console/internal/adapters/apiclient"
	"github.com/AchilleasB/membership-console/internal/adapters/handler"
	"github.com/AchilleasB/membership-console/internal/core/services"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
	"github.com/AchilleasB/membership-console/test/mocks"
)

type fakeBreaker struct{ state gobreaker.State }

func (f fakeBreaker) BreakerState() gobreaker.State { return f.state }

type actionResult struct {
	View struct {
		Screen  string `json:"screen"`
		Busy    bool   `json:"busy"`
		Message *struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"message"`
		Focus struct {
			FamilyID string `json:"family_id"`
		} `json:"focus"`
	} `json:"view"`
	Error string `json:"error"`
}

func newTestRouter(t *testing.T, api *mocks.MockMembershipAPI) http.Handler {
	t.Helper()
	svc := services.NewConsoleService(api, time.UTC,
		services.WithClock(func() time.Time { return time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC) }),
	)
	return handler.NewRouter(handler.RouterConfig{
		Console:          handler.NewConsoleHandler(svc, nil),
		Health:           handler.NewHealthHandler(nil, nil, fakeBreaker{state: gobreaker.StateClosed}),
		AllowedOrigins:   []string{"http://localhost:3000"},
		ActionsPerMinute: 0,
	})
}

func postAction(t *testing.T, router http.Handler, body string) (int, actionResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/console/actions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var res actionResult
	if strings.Contains(rec.Body.String(), `"view"`) {
		if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec.Code, res
}

func TestConsoleHandler_Current(t *testing.T) {
	router := newTestRouter(t, mocks.NewMockMembershipAPI(mocks.CreateTestFamily()...))

	req := httptest.NewRequest(http.MethodGet, "/api/console", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"screen":"home"`) {
		t.Errorf("expected the home screen, got %s", rec.Body.String())
	}
}

func TestConsoleHandler_DispatchFlow(t *testing.T) {
	router := newTestRouter(t, mocks.NewMockMembershipAPI(mocks.CreateTestFamily()...))

	code, res := postAction(t, router, `{"type":"refresh_data"}`)
	if code != http.StatusOK || res.View.Message == nil || res.View.Message.Text != "Data fetched successfully!" {
		t.Fatalf("refresh: unexpected %d %+v", code, res)
	}

	code, res = postAction(t, router, `{"type":"open_family","member_id":"SmiAn"}`)
	if code != http.StatusOK || res.View.Screen != string(viewstate.FamilyDetails) {
		t.Fatalf("open_family: unexpected %d %+v", code, res)
	}

	code, res = postAction(t, router, `{"type":"close_family"}`)
	if code != http.StatusOK || res.View.Screen != string(viewstate.Home) {
		t.Fatalf("close_family: unexpected %d %+v", code, res)
	}
}

func TestConsoleHandler_DispatchErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		expectCode int
	}{
		{name: "malformed_body", body: `{"type":`, expectCode: http.StatusBadRequest},
		{name: "unknown_action", body: `{"type":"launch_rockets"}`, expectCode: http.StatusBadRequest},
		{name: "missing_family", body: `{"type":"open_family","member_id":"Nobody"}`, expectCode: http.StatusNotFound},
		{name: "invalid_transition", body: `{"type":"close_record"}`, expectCode: http.StatusConflict},
		{name: "invalid_visit_datetime", body: `{"type":"submit_visit","visit_datetime":"yesterday"}`, expectCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, mocks.NewMockMembershipAPI(mocks.CreateTestFamily()...))
			postAction(t, router, `{"type":"refresh_data"}`)

			code, res := postAction(t, router, tt.body)

			if code != tt.expectCode {
				t.Errorf("expected status %d, got %d (%+v)", tt.expectCode, code, res)
			}
			if code != http.StatusBadRequest && res.View.Screen != string(viewstate.Home) {
				t.Errorf("a failed action must keep the screen, got %q", res.View.Screen)
			}
		})
	}
}

func TestConsoleHandler_RemoteFailureIsBadGateway(t *testing.T) {
	api := mocks.NewMockMembershipAPI(mocks.CreateTestFamily()...)
	api.FetchError = &apiclient.TransportError{Op: "fetch_records", Err: errors.New("connection refused")}
	router := newTestRouter(t, api)

	code, res := postAction(t, router, `{"type":"refresh_data"}`)

	if code != http.StatusBadGateway {
		t.Errorf("expected status %d, got %d", http.StatusBadGateway, code)
	}
	if res.View.Message == nil || res.View.Message.Kind != "error" {
		t.Errorf("expected an error message in the view, got %+v", res.View.Message)
	}
}

func TestActionRequest_Action(t *testing.T) {
	tests := []struct {
		body   string
		expect viewstate.Action
	}{
		{`{"type":"set_search","query":"smi","include_inactive":true}`, viewstate.SetSearch{Query: "smi", IncludeInactive: true}},
		{`{"type":"check_in_family","member_id":"SmiAn","people":3}`, viewstate.CheckInFamily{FamilyID: "SmiAn", People: 3}},
		{`{"type":"delete_secondary_member","name":"Bob","last_name":"Smith"}`, viewstate.DeleteSecondaryMember{Name: "Bob", LastName: "Smith"}},
		{`{"type":"submit_visit","visit_datetime":"2024-06-14T09:15"}`, viewstate.SubmitVisit{VisitDatetime: "2024-06-14T09:15"}},
		{`{"type":"next_month"}`, viewstate.NextMonth{}},
	}

	for _, tt := range tests {
		t.Run(tt.expect.ActionType(), func(t *testing.T) {
			var req handler.ActionRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := req.Action()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Errorf("expected %#v, got %#v", tt.expect, got)
			}
		})
	}
}

func TestActionRequest_OpenRecordKey(t *testing.T) {
	req := handler.ActionRequest{Type: "open_record", MemberID: "SmiAn", Name: "Bob", LastName: "Smith"}
	got, err := req.Action()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	open, ok := got.(viewstate.OpenRecord)
	if !ok || open.Member.FamilyID != "SmiAn" || open.Member.Name != "Bob" {
		t.Errorf("unexpected action %#v", got)
	}
}

func TestHealthHandler_Health(t *testing.T) {
	h := handler.NewHealthHandler(nil, nil, fakeBreaker{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var response handler.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "UP" {
		t.Errorf("expected status 'UP', got %q", response.Status)
	}
	if _, ok := response.Checks["process"]; !ok {
		t.Error("expected 'process' check in response")
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name         string
		api          handler.BreakerReporter
		expectCode   int
		expectStatus string
	}{
		{name: "breaker_closed", api: fakeBreaker{state: gobreaker.StateClosed}, expectCode: http.StatusOK, expectStatus: "UP"},
		{name: "breaker_half_open", api: fakeBreaker{state: gobreaker.StateHalfOpen}, expectCode: http.StatusOK, expectStatus: "UP"},
		{name: "breaker_open", api: fakeBreaker{state: gobreaker.StateOpen}, expectCode: http.StatusServiceUnavailable, expectStatus: "DOWN"},
		{name: "no_client", api: nil, expectCode: http.StatusServiceUnavailable, expectStatus: "DOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(nil, nil, tt.api)

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.expectCode {
				t.Errorf("expected status %d, got %d", tt.expectCode, rec.Code)
			}
			var response handler.HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Status != tt.expectStatus {
				t.Errorf("expected status %q, got %q", tt.expectStatus, response.Status)
			}
			if _, ok := response.Checks["redis"]; ok {
				t.Error("a disabled cache must not be checked")
			}
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, mocks.NewMockMembershipAPI())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, mocks.NewMockMembershipAPI())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
