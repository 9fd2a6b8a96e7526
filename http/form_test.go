package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestFormRenders(t *testing.T) {
	mux := http.NewServeMux()
	RegisterFormHandlers(mux)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, field := range []string{`name="school"`, `name="sex"`, `name="age"`, `name="studytime"`, `name="failures"`, `name="absences"`} {
		if !strings.Contains(body, field) {
			t.Fatalf("form missing input %s", field)
		}
	}
}

func TestFormSubmit(t *testing.T) {
	mux := http.NewServeMux()
	RegisterFormHandlers(mux)
	SetPredictor(newFakePredictor())
	defer resetHandlers()

	form := url.Values{
		"school":    {"GP"},
		"sex":       {"F"},
		"age":       {"17"},
		"studytime": {"2"},
		"failures":  {"0"},
		"absences":  {"4"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "12.34") {
		t.Fatalf("response should show the predicted grade, got:\n%s", body)
	}
	if !strings.Contains(body, "What drove this prediction") {
		t.Fatal("response should include the local explanation panel")
	}
	if !strings.Contains(body, "Model-wide feature importance") {
		t.Fatal("response should include the global importance panel")
	}
}

func TestFormSubmitRejectsNonNumeric(t *testing.T) {
	mux := http.NewServeMux()
	RegisterFormHandlers(mux)
	SetPredictor(newFakePredictor())
	defer resetHandlers()

	form := url.Values{
		"school":    {"GP"},
		"sex":       {"F"},
		"age":       {"seventeen"},
		"studytime": {"2"},
		"failures":  {"0"},
		"absences":  {"4"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with inline error, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "must be a whole number") {
		t.Fatal("response should surface the parse error")
	}
}
