package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggerPassesRequestThrough(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		handler http.HandlerFunc
		want    int
	}{
		{
			"explicit status", http.MethodGet, "/orders",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			http.StatusOK,
		},
		{
			"error status", http.MethodGet, "/orders/999999",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			http.StatusNotFound,
		},
		{
			"implicit 200 on bare write", http.MethodGet, "/health",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"status":"ok"}`)) },
			http.StatusOK,
		},
		{
			"created on mutation", http.MethodPost, "/coupons",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) },
			http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			Logger(tt.handler).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestResponseWriterStatusCapture(t *testing.T) {
	t.Run("records the first WriteHeader only", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusConflict)
		rw.WriteHeader(http.StatusInternalServerError)

		if rw.statusCode != http.StatusConflict {
			t.Errorf("statusCode: got %d, want 409 (first call wins)", rw.statusCode)
		}
	})

	t.Run("bare Write defaults to 200", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

		n, err := rw.Write([]byte(`{}`))
		if err != nil || n != 2 {
			t.Fatalf("Write: n=%d err=%v", n, err)
		}
		if rw.statusCode != http.StatusOK || !rw.written {
			t.Errorf("after bare write: status=%d written=%v", rw.statusCode, rw.written)
		}
	})

	t.Run("Write after WriteHeader keeps the explicit status", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusCreated)
		rw.Write([]byte(`{"id":1}`))

		if rw.statusCode != http.StatusCreated {
			t.Errorf("statusCode: got %d, want 201", rw.statusCode)
		}
	})
}
