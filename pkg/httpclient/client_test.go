package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSetsBrowserHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("User-Agent = %q, want %q", r.Header.Get("User-Agent"), "test-agent")
		}
		if r.Header.Get("Origin") != "https://www.iheart.com" {
			t.Errorf("Origin = %q", r.Header.Get("Origin"))
		}
		if r.Header.Get("Referer") != "https://www.iheart.com/" {
			t.Errorf("Referer = %q", r.Header.Get("Referer"))
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	body, err := New("test-agent").Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("body = %q, want %q", string(body), "ok")
	}
}

func TestGetNonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := New("").Get(context.Background(), server.URL); err == nil {
		t.Fatal("expected error on 404, got nil")
	}
}
