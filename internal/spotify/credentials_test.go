package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestTokenSourceStatic(t *testing.T) {
	ts, err := TokenSource(context.Background(), Credentials{AccessToken: "static-token", ClientID: "ignored"})
	if err != nil {
		t.Fatalf("TokenSource() error = %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "static-token" {
		t.Errorf("AccessToken = %q, want static-token", tok.AccessToken)
	}
}

func TestTokenSourceClientCredentials(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if gt := r.Form.Get("grant_type"); gt != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", gt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "granted", "token_type": "bearer", "expires_in": 3600}`))
	}))
	defer server.Close()

	ts, err := TokenSource(context.Background(), Credentials{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     server.URL,
	})
	if err != nil {
		t.Fatalf("TokenSource() error = %v", err)
	}

	for range 2 {
		tok, err := ts.Token()
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if tok.AccessToken != "granted" {
			t.Errorf("AccessToken = %q, want granted", tok.AccessToken)
		}
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("token endpoint hit %d times, want 1", n)
	}
}

func TestTokenSourceGrantFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_client"}`))
	}))
	defer server.Close()

	_, err := TokenSource(context.Background(), Credentials{ClientID: "id", ClientSecret: "bad", TokenURL: server.URL})
	if err == nil {
		t.Fatal("TokenSource() error = nil, want grant error")
	}
}

func TestTokenSourceNoCredentials(t *testing.T) {
	_, err := TokenSource(context.Background(), Credentials{ClientID: "id"})
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("TokenSource() error = %v, want ErrNoCredentials", err)
	}
}

func TestNewHTTPClientSetsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ts, err := TokenSource(context.Background(), Credentials{AccessToken: "tok"})
	if err != nil {
		t.Fatalf("TokenSource() error = %v", err)
	}
	client := New(NewHTTPClient(context.Background(), ts), WithBaseURL(server.URL))
	if _, err := client.Fetch(context.Background(), Tracks, "x"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
}
