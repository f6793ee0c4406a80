package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginSendsFormEncodedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != "secret" {
			t.Errorf("unexpected credentials %v", r.PostForm)
		}
		w.Write([]byte(`{"access_token":"abc123"}`))
	}))
	defer srv.Close()

	token, err := NewClient(srv.URL).Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want abc123", token)
	}
}

func TestIssueCertificateSendsBearerAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/issue-certificate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer abc123" {
			t.Errorf("unexpected authorization header %q", auth)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		want := `{"id":"C1","recipient":"Alice","course":"Math"}`
		if string(body) != want {
			t.Errorf("body = %s, want %s", body, want)
		}
		w.Write([]byte(`{"message":"certificate issued","txHash":"0xdeadbeef"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).IssueCertificate(context.Background(), "abc123", IssueRequest{
		ID:        "C1",
		Recipient: "Alice",
		Course:    "Math",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if res.TxHash != "0xdeadbeef" {
		t.Errorf("txHash = %q, want 0xdeadbeef", res.TxHash)
	}
	if res.Message != "certificate issued" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestVerifyCertificateEscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"id":"C 1","recipient":"Alice","course":"Math","issueDate":1700000000,"revoked":false}`))
	}))
	defer srv.Close()

	cert, err := NewClient(srv.URL).VerifyCertificate(context.Background(), "C 1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if gotPath != "/api/verify-certificate/C%201" {
		t.Errorf("path = %q", gotPath)
	}
	if cert.ID != "C 1" || cert.IssueDate != 1700000000 {
		t.Errorf("unexpected certificate %+v", cert)
	}
}

func TestErrorResponseCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"certificate not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).VerifyCertificate(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Detail != "certificate not found" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestErrorResponseWithoutDetailBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Events(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Detail != "" {
		t.Errorf("detail = %q, want empty", apiErr.Detail)
	}
}

func TestEventsKeepsCollectionsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"certificate_events":[{"id":"C1"}],"admin_events":"nope"}`))
	}))
	defer srv.Close()

	payload, err := NewClient(srv.URL).Events(context.Background())
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	// A malformed collection must survive decoding untouched; shaping it is
	// the events package's job.
	if string(payload.AdminEvents) != `"nope"` {
		t.Errorf("admin_events = %s", payload.AdminEvents)
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.Events(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure decoded as *APIError: %v", err)
	}
}
