package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// doJSON sends a JSON request to a platform API, classifies the response
// status, and decodes the body into out when out is non-nil. Transport
// failures come back as retryable.
func doJSON(ctx context.Context, method, url, platform, bearer string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Permanent("%s: marshal request: %v", platform, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Permanent("%s: build request: %v", platform, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Retryable("%s: request failed: %v", platform, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Retryable("%s: read response: %v", platform, err)
	}

	if err := ClassifyStatus(resp.StatusCode, platform, string(respBody)); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return Retryable("%s: decode response: %v", platform, err)
		}
	}
	return nil
}

func jsonDecode(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

// isUnauthorized detects the auth-failure classification produced by
// ClassifyStatus so adapters can run their refresh-and-retry cycle.
func isUnauthorized(err error) bool {
	var re *RetryableError
	return errors.As(err, &re) && strings.Contains(re.Cause.Error(), "unauthorized")
}
