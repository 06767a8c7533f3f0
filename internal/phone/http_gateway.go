package phone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	dErrors "agrilink/pkg/domain-errors"
)

// HTTPGateway talks to an external SMS gateway over JSON. Calls are bounded
// by a timeout and guarded by a circuit breaker so a dead gateway fails fast
// instead of tying up request handlers.
type HTTPGateway struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewHTTPGateway(baseURL, token string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	settings := gobreaker.Settings{
		Name:    "sms-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && counts.TotalFailures*2 >= counts.Requests
		},
	}
	return &HTTPGateway{
		baseURL: baseURL,
		token:   token,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (g *HTTPGateway) SendCode(ctx context.Context, phoneNumber string) error {
	return g.post(ctx, "/v1/codes/send", map[string]string{"phone": phoneNumber})
}

func (g *HTTPGateway) VerifyCode(ctx context.Context, phoneNumber, code string) error {
	return g.post(ctx, "/v1/codes/verify", map[string]string{"phone": phoneNumber, "code": code})
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload map[string]string) error {
	_, err := g.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, g.doPost(ctx, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "sms gateway circuit open")
		}
		return err
	}
	return nil
}

func (g *HTTPGateway) doPost(ctx context.Context, path string, payload map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal sms request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build sms request")
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "sms gateway timed out")
		}
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "sms gateway unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return dErrors.New(dErrors.CodeValidation, "sms gateway rejected the request")
	default:
		return dErrors.New(dErrors.CodeUpstreamUnavailable,
			fmt.Sprintf("sms gateway returned status %d", resp.StatusCode))
	}
}
