package source

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-recon-api/internal/models"
	appErrors "github.com/noah-isme/academy-recon-api/pkg/errors"
)

// PricingClient fetches authoritative course pricing records.
type PricingClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewPricingClient constructs a pricing client with a bounded timeout.
func NewPricingClient(url string, timeout time.Duration, logger *zap.Logger) *PricingClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the current pricing catalogue. An empty catalogue is valid;
// matching then simply yields no price.
func (c *PricingClient) Fetch(ctx context.Context) ([]models.CoursePricing, error) {
	raw, err := fetchArray(ctx, c.client, c.url)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "pricing fetch failed")
	}

	courses := make([]models.CoursePricing, 0, len(raw))
	for i, element := range raw {
		var course models.CoursePricing
		if err := json.Unmarshal(element, &course); err != nil {
			c.logger.Warn("skipping malformed pricing element", zap.Int("index", i), zap.Error(err))
			continue
		}
		if course.ID == "" {
			c.logger.Warn("skipping pricing element without id", zap.Int("index", i))
			continue
		}
		courses = append(courses, course)
	}
	return courses, nil
}
