package pixel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTrackPostsEvent(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.Track(context.Background(), Event{
		EventName: "Purchase",
		OrderID:   "ord_1",
		Value:     999,
		Currency:  "INR",
	})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if got.EventName != "Purchase" || got.OrderID != "ord_1" {
		t.Errorf("event = %+v", got)
	}
	if got.Timestamp == 0 {
		t.Error("timestamp not defaulted")
	}
}

func TestTrackNoEndpointIsNoop(t *testing.T) {
	c := NewClient("", "")
	if err := c.Track(context.Background(), Event{EventName: "Purchase"}); err != nil {
		t.Fatalf("Track: %v", err)
	}
}

func TestTrackNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	if err := c.Track(context.Background(), Event{EventName: "Purchase"}); err == nil {
		t.Fatal("expected error")
	}
}
