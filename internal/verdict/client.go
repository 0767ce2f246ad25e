// Package verdict obtains audit verdicts: from the external verifier when it
// is reachable, from the local heuristic when it is not.
package verdict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

// Verdict is the verifier's answer for one piece of content.
type Verdict struct {
	Ok    bool `json:"ok"`
	Score int  `json:"score"`
}

// Request is the payload sent to the verifier service.
type Request struct {
	ContentHash id.ContentHash `json:"content_hash"`
	URI         string         `json:"uri"`
	Content     string         `json:"content"`
}

// Client calls the external verifier over HTTP. Any transport failure,
// timeout, non-2xx status or malformed body surfaces as VerifierUnavailable
// so callers can fall back.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Verify(ctx context.Context, req Request) (Verdict, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode verifier request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeVerifierUnavailable, "build verifier request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeVerifierUnavailable, "verifier unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Verdict{}, dErrors.New(dErrors.CodeVerifierUnavailable,
			fmt.Sprintf("verifier returned status %d", resp.StatusCode))
	}

	var verdict Verdict
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&verdict); err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeVerifierUnavailable, "decode verifier response")
	}
	if verdict.Score < 0 || verdict.Score > 100 {
		return Verdict{}, dErrors.Newf(dErrors.CodeVerifierUnavailable,
			"verifier score %d out of range", verdict.Score)
	}
	return verdict, nil
}
