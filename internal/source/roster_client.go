package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

// RosterClient fetches student enrollments from the roster source.
type RosterClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewRosterClient constructs a roster client with a bounded timeout.
func NewRosterClient(url string, timeout time.Duration, logger *zap.Logger) *RosterClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the current roster. Individual malformed elements are
// skipped, never aborting the batch; only transport-level failures error.
func (c *RosterClient) Fetch(ctx context.Context) ([]models.StudentEnrollment, error) {
	raw, err := fetchArray(ctx, c.client, c.url)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "roster fetch failed")
	}

	enrollments := make([]models.StudentEnrollment, 0, len(raw))
	for i, element := range raw {
		var enrollment models.StudentEnrollment
		if err := json.Unmarshal(element, &enrollment); err != nil {
			c.logger.Warn("skipping malformed roster element", zap.Int("index", i), zap.Error(err))
			continue
		}
		if enrollment.StudentID == "" {
			c.logger.Warn("skipping roster element without student id", zap.Int("index", i))
			continue
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, nil
}

// fetchArray performs a GET and decodes the body as a JSON array of raw
// elements so callers can tolerate per-element shape drift.
func fetchArray(ctx context.Context, client *http.Client, url string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", res.StatusCode, url)
	}

	var elements []json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return elements, nil
}
