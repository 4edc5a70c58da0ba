// Package apiclient talks to the remote membership API over HTTP/JSON.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AchilleasB/membership-console/internal/config"
	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Signer, when set, adds a bearer token to every request.
	Signer     *TokenSigner
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	signer  *TokenSigner
	logger  *slog.Logger
}

var _ ports.MembershipAPI = (*Client)(nil)

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// 4xx replies mean the API is up; only transport errors and 5xx count
	// against the breaker.
	cb := config.NewCircuitBreakerWithCheck(config.BreakerMembershipAPI, func(err error) bool {
		return err == nil || IsClientError(err)
	})

	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
		cb:      cb,
		signer:  cfg.Signer,
		logger:  logger.With("component", "membership-api"),
	}
}

// BreakerState reports the circuit breaker state for health checks.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

type messageResponse struct {
	Message string `json:"message"`
}

type countResponse struct {
	Count int `json:"count"`
}

func (c *Client) FetchRecords(ctx context.Context) ([]domain.Member, error) {
	var records []domain.Member
	if err := c.do(ctx, "fetch_records", http.MethodGet, "/data", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) VisitsTodayCount(ctx context.Context) (int, error) {
	var resp countResponse
	if err := c.do(ctx, "visits_today_count", http.MethodGet, "/visits/today/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) VisitsTodayGrouped(ctx context.Context) ([]domain.VisitorGroup, error) {
	var groups []domain.VisitorGroup
	if err := c.do(ctx, "visits_today_grouped", http.MethodGet, "/visits/today/grouped", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) MemberVisits(ctx context.Context, member domain.MemberKey) ([]string, error) {
	path := "/visits/" + url.PathEscape(member.FamilyID) + "/" + url.PathEscape(member.Name) + "/" + url.PathEscape(member.LastName)
	var visits []string
	if err := c.do(ctx, "member_visits", http.MethodGet, path, nil, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

func (c *Client) AddVisit(ctx context.Context, visit domain.Visit) (string, error) {
	return c.message(ctx, "add_visit", http.MethodPost, "/add_visit", visit)
}

func (c *Client) AddRecord(ctx context.Context, record domain.NewRecord) (ports.AddRecordResult, error) {
	var result ports.AddRecordResult
	if err := c.do(ctx, "add_record", http.MethodPost, "/add_record", record, &result); err != nil {
		return ports.AddRecordResult{}, err
	}
	if result.MemberID == "" {
		return ports.AddRecordResult{}, fmt.Errorf("add_record: response carries no member_id")
	}
	return result, nil
}

func (c *Client) AddSecondaryMember(ctx context.Context, member domain.NewSecondaryMember) (string, error) {
	return c.message(ctx, "add_secondary_member", http.MethodPost, "/add_secondary_member", member)
}

func (c *Client) UpdateRecord(ctx context.Context, familyID string, update domain.RecordUpdate) (string, error) {
	return c.message(ctx, "update_record", http.MethodPut, "/update_record/"+url.PathEscape(familyID), update)
}

func (c *Client) DeleteRecord(ctx context.Context, familyID string, member *domain.MemberKey) (string, error) {
	var body any
	if member != nil {
		body = map[string]string{"name": member.Name, "last_name": member.LastName}
	}
	return c.message(ctx, "delete_record", http.MethodDelete, "/delete_record/"+url.PathEscape(familyID), body)
}

func (c *Client) UpdateExpiredMemberships(ctx context.Context) (string, error) {
	return c.message(ctx, "update_expired_memberships", http.MethodPut, "/update_expired_memberships", nil)
}

func (c *Client) SendRenewalEmails(ctx context.Context) (string, error) {
	return c.message(ctx, "send_renewal_emails", http.MethodPost, "/send_renewal_emails", nil)
}

func (c *Client) message(ctx context.Context, op, method, path string, body any) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, op, method, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// do sends one request through the circuit breaker and decodes a 2xx JSON
// reply into out.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, op, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &TransportError{Op: op, Err: err}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.signer != nil {
		token, err := c.signer.Token()
		if err != nil {
			return fmt.Errorf("%s: sign token: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(op, "transport_error").Inc()
		c.logger.Warn("membership api unreachable", "op", op, "request_id", requestID, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(resp.StatusCode, raw)
		c.logger.Warn("membership api error", "op", op, "request_id", requestID, "status", resp.StatusCode, "error", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
