package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/resilience"
)

// RemoteOptions configures the remote classifier client.
type RemoteOptions struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond throttles lookups so a large dump does not hammer
	// the classification service. Default: 20.
	RequestsPerSecond float64
}

// RemoteClassifier delegates role lookups to an HTTP classification
// service: GET {base}/api/v1/roles?wwpn=<normalized>. A 404 means the
// service has no rule for the WWPN.
type RemoteClassifier struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewRemoteClassifier creates a client for the given service.
func NewRemoteClassifier(opts RemoteOptions) *RemoteClassifier {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 20
	}
	return &RemoteClassifier{
		baseURL: opts.BaseURL,
		httpc:   &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

type roleResponse struct {
	Role model.Role `json:"role"`
}

// Classify looks up one WWPN. Transient HTTP failures are retried with
// backoff before being reported.
func (c *RemoteClassifier) Classify(ctx context.Context, wwpn string) (model.Role, bool, error) {
	norm, err := model.NormalizeWWPN(wwpn)
	if err != nil {
		return "", false, nil
	}

	type outcome struct {
		role model.Role
		ok   bool
	}
	out, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (outcome, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return outcome{}, err
		}

		u := fmt.Sprintf("%s/api/v1/roles?wwpn=%s", c.baseURL, url.QueryEscape(norm))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return outcome{}, eris.Wrap(err, "roles: build request")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return outcome{}, eris.Wrap(err, "roles: request")
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return outcome{}, nil // no rule
		case resilience.IsTransientHTTPStatus(resp.StatusCode):
			return outcome{}, resilience.NewTransientError(
				eris.Errorf("roles: service returned %d", resp.StatusCode), resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return outcome{}, eris.Errorf("roles: service returned %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err != nil {
			return outcome{}, eris.Wrap(err, "roles: read response")
		}
		var rr roleResponse
		if err := json.Unmarshal(body, &rr); err != nil {
			return outcome{}, eris.Wrap(err, "roles: decode response")
		}
		return outcome{role: rr.Role, ok: true}, nil
	})
	if err != nil {
		return "", false, err
	}
	return out.role, out.ok, nil
}
