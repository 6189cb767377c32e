package providers

import (
	"net/http"
	"time"

	"github.com/robinjoseph08/golib/logger"
)

// VerboseTransport logs every provider request with its status and timing.
// It backs the verbose-API flag of the daemon and the debug CLI.
type VerboseTransport struct {
	Base http.RoundTripper
}

func (t *VerboseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	log := logger.FromContext(req.Context())
	start := time.Now()
	resp, err := base.RoundTrip(req)
	data := logger.Data{
		"method":      req.Method,
		"url":         req.URL.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		log.Err(err).Error("provider request failed", data)
		return nil, err
	}
	data["status"] = resp.StatusCode
	log.Info("provider request", data)
	return resp, nil
}

// NewClient builds the HTTP client shared by the provider adapters.
func NewClient(timeout time.Duration, verbose bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if verbose {
		client.Transport = &VerboseTransport{}
	}
	return client
}
