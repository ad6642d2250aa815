package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HandleHealth(context.Background()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected %d got %d", http.StatusOK, rec.Code)
	}
	if body := rec.Body.String(); body != `{"status":"ok"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestRequireSecret(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name     string
		secret   string
		header   string
		expected int
	}{
		{name: "match", secret: "s3cret", header: "s3cret", expected: http.StatusNoContent},
		{name: "mismatch", secret: "s3cret", header: "nope", expected: http.StatusUnauthorized},
		{name: "missing", secret: "s3cret", expected: http.StatusUnauthorized},
		{name: "disabled", secret: "", header: "", expected: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/commands", nil)
			if tc.header != "" {
				req.Header.Set(SecretHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			RequireSecret(tc.secret, ok).ServeHTTP(rec, req)
			if rec.Code != tc.expected {
				t.Errorf("expected %d got %d", tc.expected, rec.Code)
			}
		})
	}
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	srv, err := New("0")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeHTTP(ctx, &http.Server{Handler: HandleHealth(ctx)})
	}()

	resp, err := http.Get("http://127.0.0.1:" + srv.Port() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected %d got %d", http.StatusOK, resp.StatusCode)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("serve: %v", err)
	}
}
