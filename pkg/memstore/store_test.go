package memstore

import (
	"testing"

	"github.com/shopa-beauty/storefront-api/pkg/shop"
	"github.com/shopa-beauty/storefront-api/pkg/shop/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) shop.Store { return New() })
}
