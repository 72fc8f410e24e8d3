package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSignupParsesSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/signup" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
			t.Errorf("expected multipart content type, got %s", ct)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"message":"account created","user":{"id":7},"files":{"portfolio_uploaded":false,"cv_uploaded":true}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	resp, err := c.Signup(context.Background(),
		"multipart/form-data; boundary=xyz", strings.NewReader("--xyz--"))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Message != "account created" || !resp.Files.CVUploaded {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSignupSurfacesBackendDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"email already registered"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Signup(context.Background(), "multipart/form-data; boundary=x", strings.NewReader(""))
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "email already registered" {
		t.Fatalf("backend detail must surface verbatim, got %q", err.Error())
	}
}

func TestSignupGenericErrorKeyedByStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream blew up")
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Signup(context.Background(), "multipart/form-data; boundary=x", strings.NewReader(""))
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status-keyed failure, got %v", err)
	}
}

func TestLinkAttachmentSendsBearerAndBody(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"cv_file":"https://store/cv/x.pdf"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.LinkAttachment(context.Background(), "cv_file", "https://store/cv/x.pdf", "tok")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("bearer token missing: %q", gotAuth)
	}
	if gotPath != "/api/auth/signup/step5" {
		t.Fatalf("wrong step endpoint: %s", gotPath)
	}
	if gotBody["cv_file"] != "https://store/cv/x.pdf" {
		t.Fatalf("reference body wrong: %v", gotBody)
	}
}

func TestLinkAttachmentUnknownField(t *testing.T) {
	c := New("http://unused", time.Second)
	if err := c.LinkAttachment(context.Background(), "avatar_file", "u", "tok"); err == nil {
		t.Fatalf("expected error for field without a link endpoint")
	}
}

func TestLinkAttachmentSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"detail":"reference must be https"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.LinkAttachment(context.Background(), "cv_file", "ftp://nope", "tok")
	if err == nil || err.Error() != "reference must be https" {
		t.Fatalf("expected verbatim detail, got %v", err)
	}
}

func TestLoginReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["user_type"] != "talent" {
			t.Errorf("user_type not sent: %v", body)
		}
		io.WriteString(w, `{"access_token":"tok-123","user":{"id":1},"user_type":"talent"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	resp, err := c.Login(context.Background(), "ada@example.com", "s3cret", "talent")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken != "tok-123" || resp.UserType != "talent" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestLoginMissingTokenIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"user":{}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Login(context.Background(), "a@b", "pw", "talent"); err == nil {
		t.Fatalf("expected error for missing access token")
	}
}
