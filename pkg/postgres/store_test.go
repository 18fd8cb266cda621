package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/shopa-beauty/storefront-api/pkg/shop"
	"github.com/shopa-beauty/storefront-api/pkg/shop/storetest"
)

// Set POSTGRES_TEST_URL to a scratch database to run these.
func TestStoreConformance(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}

	store, err := Open(context.Background(), url)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	storetest.Run(t, func(t *testing.T) shop.Store { return store })
	t.Run("PlaceOrderRollsBack", func(t *testing.T) {
		storetest.PlaceOrderRollsBack(t, store)
	})
}

func TestPgErrorCodeIgnoresOtherErrors(t *testing.T) {
	if code := pgErrorCode(context.Canceled); code != "" {
		t.Fatalf("pgErrorCode = %q, want empty", code)
	}
}
