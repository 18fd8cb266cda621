// Package catalog fetches product listings from the external catalog service.
// Nothing is cached: every call is a fresh round trip.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

var (
	// ErrUpstreamUnavailable covers transport failures, deadline expiry and
	// non-2xx answers. Callers may retry.
	ErrUpstreamUnavailable = errors.New("catalog: upstream unavailable")
	// ErrUpstreamMalformed means the payload could not be read as a product
	// list. Retrying will not help until the upstream is fixed.
	ErrUpstreamMalformed = errors.New("catalog: malformed upstream payload")
)

const maxPayloadBytes = 16 << 20

// upstreamProduct is the catalog's wire shape.
type upstreamProduct struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	RentPrice   float64 `json:"rentprice"`
	Size        string  `json:"size"`
	Image       string  `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (u upstreamProduct) toProduct() models.Product {
	return models.Product{
		ID:          u.ID,
		Title:       u.Title,
		Category:    u.Category,
		Description: u.Description,
		Price:       u.Price,
		RentPrice:   u.RentPrice,
		Size:        u.Size,
		Image:       u.Image,
		Rating:      models.Rating{Rate: u.Rating.Rate, Count: u.Rating.Count},
	}
}

type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(url string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:     url,
		timeout: timeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAll performs one GET against the product listing endpoint and returns
// the normalized products in upstream order.
func (c *Client) FetchAll(ctx context.Context) ([]models.Product, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnavailable, err)
	}

	var raw []upstreamProduct
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamMalformed, err)
	}

	products := make([]models.Product, 0, len(raw))
	for i, p := range raw {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product at index %d has no _id", ErrUpstreamMalformed, i)
		}
		products = append(products, p.toProduct())
	}
	return products, nil
}
