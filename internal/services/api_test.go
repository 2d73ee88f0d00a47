package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "http://127.0.0.1:3000" {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Errorf("expected OK JSON response, got status %d json=%v", resp.StatusCode, resp.IsJSON)
			}

			var body map[string]string
			if err := resp.Decode(&body); err != nil || body["status"] != "success" {
				t.Errorf("unexpected decode: %v %v", body, err)
			}
		})

		t.Run("Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if err := resp.Decode(&struct{}{}); err == nil {
				t.Error("expected decode error for non-JSON body")
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIService("http://example.com", nil).Get(context.Background(), "/test\x00invalid")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}
			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Body Read", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
				Header:     make(http.Header),
			}, nil)}
			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})
	})
}

func TestEndpointTokenProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("splits the endpoint URL", func(t *testing.T) {
		p := NewEndpointTokenProvider("http://127.0.0.1:3000/api/token", nil)
		if p.api.baseURL != "http://127.0.0.1:3000" || p.path != "/api/token" {
			t.Errorf("unexpected split: %s + %s", p.api.baseURL, p.path)
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/token" || r.Method != http.MethodGet {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok-123"})
		}))
		defer server.Close()

		token, err := NewEndpointTokenProvider(server.URL+"/api/token", nil).FetchAccessToken(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "tok-123" {
			t.Errorf("expected tok-123, got %q", token)
		}
	})

	t.Run("Upstream error is mirrored", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TokenResponse{Error: "invalid_client"})
		}))
		defer server.Close()

		_, err := NewEndpointTokenProvider(server.URL+"/api/token", nil).FetchAccessToken(ctx)

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %T %v", err, err)
		}
		if authErr.StatusCode != http.StatusUnauthorized || authErr.Message != "invalid_client" {
			t.Errorf("unexpected AuthError: %+v", authErr)
		}
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Error("expected AuthError to unwrap to ErrAuthFailed")
		}
	})

	t.Run("Error body with status 200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"accessToken":"tok-123","error":"token revoked"}`)
		}))
		defer server.Close()

		token, err := NewEndpointTokenProvider(server.URL+"/api/token", nil).FetchAccessToken(ctx)

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %T %v", err, err)
		}
		if authErr.Message != "token revoked" || token != "" {
			t.Errorf("unexpected result: token=%q err=%+v", token, authErr)
		}
	})

	t.Run("Empty token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"accessToken":""}`)
		}))
		defer server.Close()

		_, err := NewEndpointTokenProvider(server.URL+"/api/token", nil).FetchAccessToken(ctx)
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Errorf("expected AuthError, got %v", err)
		}
	})

	t.Run("Network error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial tcp: refused"))}
		_, err := NewEndpointTokenProvider("http://127.0.0.1:1/api/token", client).FetchAccessToken(ctx)

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.StatusCode != 0 || !strings.Contains(authErr.Error(), "refused") {
			t.Errorf("unexpected AuthError: %v", authErr)
		}
	})
}

func TestClientCredentialsProvider(t *testing.T) {
	ctx := context.Background()
	creds := func(url string) shared.SpotifyConfig {
		return shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret", TokenURL: url}
	}

	t.Run("Missing credentials", func(t *testing.T) {
		_, err := NewClientCredentialsProvider(shared.SpotifyConfig{ClientID: "id"}, nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default token URL", func(t *testing.T) {
		p, err := NewClientCredentialsProvider(creds(""), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.config.TokenURL != SpotifyTokenURL {
			t.Errorf("expected %s, got %s", SpotifyTokenURL, p.config.TokenURL)
		}
	})

	t.Run("Exchanges with basic auth", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "id" || pass != "secret" {
				t.Errorf("expected basic auth id/secret, got %q/%q ok=%v", user, pass, ok)
			}
			r.ParseForm()
			if r.Form.Get("grant_type") != "client_credentials" {
				t.Errorf("expected client_credentials grant, got %q", r.Form.Get("grant_type"))
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"access_token":"app-token","token_type":"Bearer","expires_in":3600}`)
		}))
		defer server.Close()

		p, _ := NewClientCredentialsProvider(creds(server.URL), nil)
		token, err := p.FetchAccessToken(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "app-token" {
			t.Errorf("expected app-token, got %q", token)
		}
	})

	t.Run("Upstream rejection keeps status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_client","error_description":"Invalid client secret"}`)
		}))
		defer server.Close()

		p, _ := NewClientCredentialsProvider(creds(server.URL), nil)
		_, err := p.FetchAccessToken(ctx)

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.StatusCode != http.StatusBadRequest || authErr.Message != "Invalid client secret" {
			t.Errorf("unexpected AuthError: %+v", authErr)
		}
	})

	t.Run("Network failure has no status", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("no route"))}
		p, _ := NewClientCredentialsProvider(creds("http://accounts.invalid/api/token"), client)
		_, err := p.FetchAccessToken(ctx)

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.StatusCode != 0 {
			t.Errorf("expected no status, got %d", authErr.StatusCode)
		}
	})
}
