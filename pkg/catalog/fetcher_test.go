package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"btb-downloader/pkg/domain"
	"btb-downloader/pkg/httpclient"
)

func newTestFetcher(baseURL string) *APIFetcher {
	filter := NewTitleFilter("it could happen here")
	return NewAPIFetcher(httpclient.New(""), baseURL, 3, filter, 0, zerolog.Nop())
}

func episodeJSON(id int, title string) string {
	return fmt.Sprintf(`{"id":%d,"title":%q,"podcastId":29236323,"podcastSlug":"105-behind-the-bastards","startDate":1623758400000,"duration":3600,"description":"<p>d</p>"}`, id, title)
}

func TestFetchStopsAtLimit(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch r.URL.Query().Get("pageKey") {
		case "":
			fmt.Fprintf(w, `{"data":[%s,%s,%s],"pageKey":"p2"}`,
				episodeJSON(1, "Part One"),
				episodeJSON(2, "It Could Happen Here Weekly"),
				episodeJSON(3, "Part Two"))
		case "p2":
			fmt.Fprintf(w, `{"data":[%s,%s,%s],"pageKey":"p3"}`,
				episodeJSON(4, "Part Three"),
				episodeJSON(5, "Part Four"),
				episodeJSON(6, "Part Five"))
		default:
			t.Errorf("unexpected pageKey %q", r.URL.Query().Get("pageKey"))
			fmt.Fprint(w, `{"data":[]}`)
		}
	}))
	defer server.Close()

	got, err := newTestFetcher(server.URL).Fetch(context.Background(), 4)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("Fetch returned %d episodes, want 4", len(got))
	}
	if requests != 2 {
		t.Fatalf("made %d requests, want 2 (should stop once the limit is filled)", requests)
	}
	wantTitles := []string{"Part One", "Part Two", "Part Three", "Part Four"}
	for i, want := range wantTitles {
		if got[i].Title != want {
			t.Errorf("episode %d title = %q, want %q", i, got[i].Title, want)
		}
	}
}

func TestFetchStopsWhenFeedExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One page, no cursor anywhere: the feed is exhausted.
		fmt.Fprintf(w, `{"data":[%s,%s]}`,
			episodeJSON(1, "Part One"),
			episodeJSON(2, "Part Two"))
	}))
	defer server.Close()

	got, err := newTestFetcher(server.URL).Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Fetch returned %d episodes, want 2", len(got))
	}
}

func TestFetchStopsOnEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[],"pageKey":"more"}`)
	}))
	defer server.Close()

	got, err := newTestFetcher(server.URL).Fetch(context.Background(), 5)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Fetch returned %d episodes, want 0", len(got))
	}
}

func TestFetchFallsBackToLinksNext(t *testing.T) {
	var sawLinkCursor bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageKey") {
		case "":
			fmt.Fprintf(w, `{"data":[%s],"links":{"next":"from-links"}}`, episodeJSON(1, "Part One"))
		case "from-links":
			sawLinkCursor = true
			fmt.Fprintf(w, `{"data":[%s]}`, episodeJSON(2, "Part Two"))
		default:
			t.Errorf("unexpected pageKey %q", r.URL.Query().Get("pageKey"))
			fmt.Fprint(w, `{"data":[]}`)
		}
	}))
	defer server.Close()

	got, err := newTestFetcher(server.URL).Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !sawLinkCursor {
		t.Fatal("fetcher never used the links.next cursor")
	}
	if len(got) != 2 {
		t.Fatalf("Fetch returned %d episodes, want 2", len(got))
	}
}

func TestFetchTransportErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := newTestFetcher(server.URL).Fetch(context.Background(), 5); err == nil {
		t.Fatal("expected error on non-200 response, got nil")
	}
}

func TestFetchSendsExpectedQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("newEnabled") != "false" {
			t.Errorf("newEnabled = %q, want %q", q.Get("newEnabled"), "false")
		}
		if q.Get("limit") != "3" {
			t.Errorf("limit = %q, want %q", q.Get("limit"), "3")
		}
		if q.Get("sortBy") != "startDate-desc" {
			t.Errorf("sortBy = %q, want %q", q.Get("sortBy"), "startDate-desc")
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	if _, err := newTestFetcher(server.URL).Fetch(context.Background(), 1); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
}

func TestTitleFilter(t *testing.T) {
	filter := NewTitleFilter("it could happen here")

	if !filter.Keep(domain.Episode{Title: "Part One: A Bastard"}) {
		t.Error("unrelated episode was filtered out")
	}
	if filter.Keep(domain.Episode{Title: "It Could Happen Here Weekly, 42"}) {
		t.Error("co-hosted feed episode was kept")
	}
	if !NewTitleFilter("").Keep(domain.Episode{Title: "Anything"}) {
		t.Error("empty phrase should keep everything")
	}
}
