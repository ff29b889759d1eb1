package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfarr/internal/domain"
	"shelfarr/internal/provider"
)

func TestGetAuthorBooksMapsResources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/author/42/book" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Fatalf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"foreignBookId":"X1","title":"Dune","authorName":"Frank Herbert",
			 "seriesId":"s1","seriesTitle":"Dune Saga","seriesPosition":1,
			 "rating":4.2,"releaseYear":1965,"hasEbook":true},
			{"id":501,"foreignBookId":"X2","title":"Dune Messiah","monitored":true,
			 "status":"downloaded"}
		]`))
	}))
	defer srv.Close()

	client := provider.NewClient(srv.URL, "secret", nil)
	entries, err := client.GetAuthorBooks(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetAuthorBooks: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ForeignID != "X1" || first.InLibrary() {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.SeriesIndex == nil || *first.SeriesIndex != 1 {
		t.Fatalf("series position not mapped: %+v", first.SeriesIndex)
	}
	if !first.Ebook || first.Audiobook {
		t.Fatalf("format flags not mapped: %+v", first)
	}

	second := entries[1]
	if !second.InLibrary() || second.LibraryBook.ID != 501 {
		t.Fatalf("library record not mapped: %+v", second.LibraryBook)
	}
	if second.LibraryBook.Status != domain.StatusDownloaded || !second.LibraryBook.Monitored {
		t.Fatalf("library record not mapped: %+v", second.LibraryBook)
	}
}

func TestUnknownStatusFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id":7,"foreignBookId":"X1","title":"T","status":"sideways"}]`))
	}))
	defer srv.Close()

	client := provider.NewClient(srv.URL, "k", nil)
	entries, err := client.Search(context.Background(), "t")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if entries[0].LibraryBook.Status != domain.StatusUnknown {
		t.Fatalf("status = %q, want unknown", entries[0].LibraryBook.Status)
	}
}

func TestAddBookSendsPayloadAndReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/book" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body["foreignBookId"] != "X1" || body["monitored"] != true {
			t.Fatalf("unexpected payload: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":501}`))
	}))
	defer srv.Close()

	client := provider.NewClient(srv.URL, "k", nil)
	id, err := client.AddBook(context.Background(), "X1", domain.AddOptions{})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if id != 501 {
		t.Fatalf("id = %d, want 501", id)
	}
}

func TestAddBookConflictClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"This book is already in library"}`))
	}))
	defer srv.Close()

	client := provider.NewClient(srv.URL, "k", nil)
	_, err := client.AddBook(context.Background(), "X1", domain.AddOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsConflict(err) {
		t.Fatalf("409 not classified as conflict: %v", err)
	}
}

func TestRemoveBookNotFoundClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/book/501" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"NotFound"}`))
	}))
	defer srv.Close()

	client := provider.NewClient(srv.URL, "k", nil)
	err := client.RemoveBook(context.Background(), 501)
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("404 not classified as not-found: %v", err)
	}
}

func TestServerErrorRetriesThenFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	client := provider.NewClient(srv.URL, "k", nil)
	_, err := client.Search(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls < 2 {
		t.Fatalf("expected retries, got %d calls", calls)
	}

	var se *domain.StatusError
	if !errors.As(err, &se) || se.Code != 500 {
		t.Fatalf("unexpected error: %v", err)
	}
}
