package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewMeta(t *testing.T) {
	m := NewMeta(45, 2, 20)
	if m.Pages != 3 || !m.HasNext || !m.HasPrev {
		t.Fatalf("unexpected meta: %+v", m)
	}

	last := NewMeta(45, 3, 20)
	if last.HasNext {
		t.Fatal("last page must not have next")
	}

	empty := NewMeta(0, 1, 20)
	if empty.Pages != 0 || empty.HasNext || empty.HasPrev {
		t.Fatalf("unexpected empty meta: %+v", empty)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, http.StatusConflict, "CONFLICT", "Email already registered")

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	var out Response
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Success || out.Error == nil || out.Error.Code != "CONFLICT" {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
