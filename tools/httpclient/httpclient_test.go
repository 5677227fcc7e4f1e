package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("default content type missing: %q", r.Header.Get("Content-Type"))
		}
		b, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	c := CreateClient(time.Second, NewTransport(Options{MaxIdleConns: 4, MaxIdleConnsPerHost: 2, IdleConnTimeout: time.Minute}), nil)
	body, status, err := RequestC(context.Background(), c, http.MethodPost, srv.URL, []byte(`{"a":1}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusAccepted || string(body) != `{"a":1}` {
		t.Fatalf("unexpected response: %d %s", status, body)
	}
}

func TestRequestCTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := CreateClient(50*time.Millisecond, nil, nil)
	if _, _, err := RequestC(context.Background(), c, http.MethodGet, srv.URL, nil, nil); err == nil {
		t.Fatalf("expected timeout error")
	}
}
