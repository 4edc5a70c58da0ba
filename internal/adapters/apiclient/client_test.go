package apiclient

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api"})
}

func TestClient_FetchRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/data" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"member_id":"SmiAn","name":"Ann","last_name":"Smith","primary_member":true,"active_flag":true,"phone":null}]`)
	})

	records, err := client.FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].MemberID != "SmiAn" || !records[0].ActiveFlag || records[0].Phone != nil {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		wantMessage    string
		wantStructured bool
	}{
		{name: "structured_error_field", status: 400, body: `{"error":"Primary member ID is required."}`, wantMessage: "Primary member ID is required.", wantStructured: true},
		{name: "json_without_error_field", status: 404, body: `{"detail":"nope"}`, wantMessage: `{"detail":"nope"}`, wantStructured: true},
		{name: "plain_text", status: 500, body: "database down", wantMessage: "database down"},
		{name: "html_page", status: 502, body: "<html>Bad Gateway</html>", wantMessage: "Bad Gateway"},
		{name: "empty_body", status: 503, body: "", wantMessage: "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.VisitsTodayCount(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMessage || apiErr.Structured != tt.wantStructured {
				t.Errorf("unexpected error %+v", apiErr)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.FetchRecords(context.Background())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T %v", err, err)
	}
	if transportErr.Op != "fetch_records" {
		t.Errorf("expected op fetch_records, got %q", transportErr.Op)
	}
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"Record not found."}`)
	})

	for i := 0; i < 5; i++ {
		_, err := client.DeleteRecord(context.Background(), "SmiAn", nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("call %d: expected *APIError, got %v", i, err)
		}
	}
}

func TestClient_ServerErrorsOpenBreaker(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 3; i++ {
		client.FetchRecords(context.Background())
	}
	_, err := client.FetchRecords(context.Background())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected open breaker to surface as *TransportError, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected the open breaker to stop requests, got %d calls", calls)
	}
}

func TestClient_MutationPayloads(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.EscapedPath(), r.Method
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"message":"ok"}`)
	})
	ctx := context.Background()

	t.Run("update_record_sends_nulls", func(t *testing.T) {
		msg, err := client.UpdateRecord(ctx, "SmiAn", domain.RecordUpdate{
			OriginalName:     "Bob",
			OriginalLastName: "Smith",
			Fields: map[domain.Field]any{
				domain.FieldName:  "Robert",
				domain.FieldPhone: domain.StringPtr(""),
			},
		})
		if err != nil || msg != "ok" {
			t.Fatalf("unexpected result %q %v", msg, err)
		}
		if gotMethod != http.MethodPut || gotPath != "/api/update_record/SmiAn" {
			t.Errorf("unexpected request %s %s", gotMethod, gotPath)
		}
		if v, ok := gotBody["phone"]; !ok || v != nil {
			t.Errorf("expected phone null, got %v (present %v)", v, ok)
		}
		if gotBody["original_name"] != "Bob" || gotBody["is_primary"] != false {
			t.Errorf("unexpected body %v", gotBody)
		}
	})

	t.Run("delete_secondary_sends_names", func(t *testing.T) {
		_, err := client.DeleteRecord(ctx, "SmiAn", &domain.MemberKey{FamilyID: "SmiAn", Name: "Bob", LastName: "Smith"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodDelete || gotBody["name"] != "Bob" || gotBody["last_name"] != "Smith" {
			t.Errorf("unexpected request %s %v", gotMethod, gotBody)
		}
	})

	t.Run("delete_family_sends_no_body", func(t *testing.T) {
		if _, err := client.DeleteRecord(ctx, "SmiAn", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotBody != nil {
			t.Errorf("expected no body, got %v", gotBody)
		}
	})

	t.Run("member_visits_escapes_names", func(t *testing.T) {
		client.MemberVisits(ctx, domain.MemberKey{FamilyID: "O'Ma", Name: "Mary Ann", LastName: "O'Malley"})
		if !strings.HasPrefix(gotPath, "/api/visits/") || !strings.Contains(gotPath, "Mary%20Ann") {
			t.Errorf("unexpected path %s", gotPath)
		}
	})
}

func TestClient_AddRecordRequiresMemberID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"message":"Record added successfully!"}`)
	})

	if _, err := client.AddRecord(context.Background(), domain.NewRecord{Name: "Eve", LastName: "Li"}); err == nil {
		t.Error("expected an error when member_id is missing")
	}
}

func TestClient_SignsRequests(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		io.WriteString(w, `{"count":2}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Signer: NewTokenSigner(key, "console-test")})
	n, err := client.VisitsTodayCount(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("unexpected result %d %v", n, err)
	}

	raw := strings.TrimPrefix(auth, "Bearer ")
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !token.Valid {
		t.Fatalf("expected a valid token, got %v", err)
	}
	if iss, _ := token.Claims.GetIssuer(); iss != "console-test" {
		t.Errorf("expected issuer console-test, got %q", iss)
	}
}
