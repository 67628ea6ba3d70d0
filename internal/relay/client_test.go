package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ileco-one/triage-backend/internal/domain"
	"github.com/ileco-one/triage-backend/internal/services"
)

func TestForward_PostsPayloadWithSecret(t *testing.T) {
	var gotSecret string
	var gotBody services.RelayedSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Relay-Secret")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s3cret")
	err := c.Forward(context.Background(), services.RelayedSubmission{
		Family: domain.FamilyOutage, Name: "Juan Dela Cruz", Details: "no power",
	})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if gotSecret != "s3cret" {
		t.Fatalf("secret header %q", gotSecret)
	}
	if gotBody.Name != "Juan Dela Cruz" || gotBody.Family != domain.FamilyOutage {
		t.Fatalf("payload %+v", gotBody)
	}
}

func TestForward_SiblingErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if err := c.Forward(context.Background(), services.RelayedSubmission{Name: "X", Details: "y"}); err == nil {
		t.Fatal("expected error on sibling 5xx")
	}
}

func TestForward_DisabledClientNoop(t *testing.T) {
	c := NewClient("", "")
	if c.Enabled() {
		t.Fatal("empty base URL must disable the client")
	}
	if err := c.Forward(context.Background(), services.RelayedSubmission{}); err != nil {
		t.Fatalf("disabled client must no-op: %v", err)
	}
}
