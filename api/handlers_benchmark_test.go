package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func BenchmarkAddTask(b *testing.B) {
	auth := mockAuth{identity: Identity{Email: "jane@x.com"}}
	handler := addTask(newMockStore(), auth, nil)
	payload := []byte(`{"title":"Write report","description":"Q3 numbers","status":"To Do","priority":"High"}`)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		e := echo.New()
		for pb.Next() {
			req := httptest.NewRequest(http.MethodPost, "/api/addtask", bytes.NewReader(payload))
			req.Header.Set(echo.HeaderAuthorization, "Bearer a.b.c")
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := handler(c); err != nil {
				b.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusCreated {
				b.Fatalf("unexpected status code: %d", rec.Code)
			}
		}
	})
}
