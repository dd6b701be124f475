package hubclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

func TestSaveSession_FillsSessionIDFromStore(t *testing.T) {
	var received SaveSessionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/onboarding/session" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"state": models.OnboardingState{SessionID: received.SessionID, Step: received.Step},
		})
	}))
	defer server.Close()

	creds := NewMemoryCredentialStore()
	creds.SetSessionID("sess-1")
	client := NewClient(server.URL, creds, zap.NewNop())

	state, err := client.SaveSession(context.Background(), &SaveSessionRequest{Step: 2})
	if err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if received.SessionID != "sess-1" {
		t.Errorf("expected session id from store, got %q", received.SessionID)
	}
	if state.Step != 2 {
		t.Errorf("expected step 2, got %d", state.Step)
	}
}

func TestGetState_SendsIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("session_id"); got != "sess-1" {
			t.Errorf("expected session_id query param, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("expected bearer token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(models.StateAggregate{})
	}))
	defer server.Close()

	creds := NewMemoryCredentialStore()
	creds.SetSessionID("sess-1")
	creds.SetToken("tok-123")
	client := NewClient(server.URL, creds, zap.NewNop())

	if _, err := client.GetState(context.Background()); err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
}

func TestGenerate_ReturnsCachedFlag(t *testing.T) {
	genID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(GenerateResult{
			Generation: &models.Generation{ID: genID, Stage: models.StageTagline},
			Cached:     true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, NewMemoryCredentialStore(), zap.NewNop())

	result, err := client.Generate(context.Background(), models.StageTagline, map[string]interface{}{"idea": "candles"}, "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.Cached {
		t.Error("expected cached result")
	}
	if result.Generation.ID != genID {
		t.Errorf("expected generation %s, got %s", genID, result.Generation.ID)
	}
}

func TestGenerate_SendsModelOverride(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(GenerateResult{Generation: &models.Generation{ID: uuid.New()}})
	}))
	defer server.Close()

	client := NewClient(server.URL, NewMemoryCredentialStore(), zap.NewNop())

	if _, err := client.Generate(context.Background(), models.StageBio, nil, "gpt-4o"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if body["model"] != "gpt-4o" {
		t.Errorf("expected model override in request, got %v", body["model"])
	}

	body = nil
	if _, err := client.Generate(context.Background(), models.StageBio, nil, ""); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, present := body["model"]; present {
		t.Error("expected no model key when using the default")
	}
}

func TestSelectGeneration_BuildsPath(t *testing.T) {
	genID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/api/onboarding/generations/" + genID.String() + "/select"
		if r.URL.Path != want {
			t.Errorf("expected path %s, got %s", want, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(models.Generation{ID: genID, PrimarySelection: true})
	}))
	defer server.Close()

	client := NewClient(server.URL, NewMemoryCredentialStore(), zap.NewNop())

	gen, err := client.SelectGeneration(context.Background(), genID, nil, nil)
	if err != nil {
		t.Fatalf("SelectGeneration failed: %v", err)
	}
	if !gen.PrimarySelection {
		t.Error("expected primary selection to be set")
	}
}

func TestClient_NonOKStatusIsError(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown_stage"})
	}))
	defer failing.Close()

	client := NewClient(failing.URL, NewMemoryCredentialStore(), zap.NewNop())

	if _, err := client.Generate(context.Background(), "haiku", nil, ""); err == nil {
		t.Error("expected an error for a 400 response")
	}
}

func TestMigrate_SendsSessionAndToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("expected bearer token, got %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["session_id"] != "sess-1" {
			t.Errorf("expected session_id sess-1, got %q", body["session_id"])
		}
		_ = json.NewEncoder(w).Encode(models.MigrationSummary{States: 1, Generations: 2})
	}))
	defer server.Close()

	creds := NewMemoryCredentialStore()
	creds.SetSessionID("sess-1")
	creds.SetToken("tok-123")
	client := NewClient(server.URL, creds, zap.NewNop())

	summary, err := client.Migrate(context.Background(), "")
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if summary.Total() != 3 {
		t.Errorf("expected 3 rows moved, got %d", summary.Total())
	}
}
