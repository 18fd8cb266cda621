// Package shop holds the cart and checkout logic. A Service is built once
// with its store and catalog and shared by all request handlers.
package shop

import (
	"context"
	"time"

	"github.com/shopa-beauty/storefront-api/pkg/logging"
	"github.com/shopa-beauty/storefront-api/pkg/models"
)

type Service struct {
	store     Store
	catalog   Catalog
	listeners []OrderListener
	now       func() time.Time
}

type Option func(*Service)

func WithListener(l OrderListener) Option {
	return func(s *Service) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// WithClock overrides the time source used for AddedAt and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() Store {
	return s.store
}

func (s *Service) Catalog() Catalog {
	return s.catalog
}

func (s *Service) notifyOrderPlaced(ctx context.Context, user *models.User, order *models.Order) {
	for _, l := range s.listeners {
		if err := l.OrderPlaced(ctx, user, order); err != nil {
			logging.LogContext(ctx, logging.Fields{
				Service: "shop",
				UserID:  order.UserID,
				OrderID: order.ID,
				Step:    "order_listener",
				Status:  "error",
				Message: err.Error(),
			})
		}
	}
}
