package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const samplePayload = `[
  {"_id":"p-1","title":"Silk Dress","category":"dresses","description":"red","price":10.0,"rentprice":2.5,"size":"M","image":"/img/1.jpg","rating":{"rate":4.5,"count":12}},
  {"_id":"p-2","title":"Linen Shirt","category":"shirts","description":"white","price":5.0,"rentprice":1.0,"size":"L","image":"/img/2.jpg","rating":{"rate":3.9,"count":4}}
]`

func newCatalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAllNormalizesProducts(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, samplePayload)
	client := NewClient(srv.URL, time.Second)

	products, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	p := products[0]
	if p.ID != "p-1" || p.Title != "Silk Dress" || p.Price != 10.0 || p.RentPrice != 2.5 {
		t.Errorf("unexpected product mapping: %+v", p)
	}
	if p.Rating.Rate != 4.5 || p.Rating.Count != 12 {
		t.Errorf("unexpected rating: %+v", p.Rating)
	}
}

func TestFetchAllNonSuccessStatus(t *testing.T) {
	srv := newCatalogServer(t, http.StatusBadGateway, `oops`)
	client := NewClient(srv.URL, time.Second)

	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchAllUnreachable(t *testing.T) {
	srv := newCatalogServer(t, http.StatusOK, samplePayload)
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).FetchAll(context.Background())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchAllDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 50*time.Millisecond).FetchAll(context.Background())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable on deadline, got %v", err)
	}
}

func TestFetchAllMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":   `<html>`,
		"object":     `{"products":[]}`,
		"missing id": `[{"title":"x","price":1}]`,
		"bad price":  `[{"_id":"a","price":"cheap"}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newCatalogServer(t, http.StatusOK, body)
			_, err := NewClient(srv.URL, time.Second).FetchAll(context.Background())
			if !errors.Is(err, ErrUpstreamMalformed) {
				t.Fatalf("expected ErrUpstreamMalformed, got %v", err)
			}
		})
	}
}
