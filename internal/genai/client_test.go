package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"server/internal/composer"
	"server/internal/domain"
)

type staticKey string

func (s staticKey) APIKey() string { return string(s) }

func newTestClient(t *testing.T, baseURL string, key string) *Client {
	t.Helper()
	client, err := NewClient(Options{Keys: staticKey(key), BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

func imageResponse(payloads ...[]byte) geminiGenerateContentResponse {
	var parts []geminiPart
	for _, data := range payloads {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}
	return geminiGenerateContentResponse{Candidates: []geminiCandidate{{Content: geminiContent{Role: "model", Parts: parts}}}}
}

func textResponse(text string) geminiGenerateContentResponse {
	return geminiGenerateContentResponse{Candidates: []geminiCandidate{{
		Content: geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}},
	}}}
}

func composeIdentityTransfer(t *testing.T) *composer.Payload {
	t.Helper()
	payload, err := composer.Compose(composer.Request{
		Subject:   domain.MediaInput{Data: []byte("subject-bytes"), MIME: "image/jpeg"},
		Reference: domain.MediaInput{Data: []byte("reference-bytes"), MIME: "image/png"},
		Output:    composer.OutputLandingHero,
		Landing:   composer.PositionLeft,
	})
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	return payload
}

func TestGenerateSendsOrderedPartsAndConfig(t *testing.T) {
	var captured geminiGenerateContentRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Fatalf("unexpected api key header: %q", got)
		}
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash-image") {
			t.Fatalf("unexpected model path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(imageResponse([]byte("artifact-bytes")))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	payload := composeIdentityTransfer(t)

	artifact, err := client.Generate(context.Background(), payload)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if string(artifact.Data) != "artifact-bytes" || artifact.MIME != "image/png" {
		t.Fatalf("unexpected artifact: mime=%s data=%q", artifact.MIME, artifact.Data)
	}

	if len(captured.Contents) != 1 {
		t.Fatalf("contents length = %d, want 1", len(captured.Contents))
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts length = %d, want reference+subject+instruction", len(parts))
	}
	wantRef := base64.StdEncoding.EncodeToString([]byte("reference-bytes"))
	wantSub := base64.StdEncoding.EncodeToString([]byte("subject-bytes"))
	if parts[0].InlineData == nil || parts[0].InlineData.Data != wantRef {
		t.Fatalf("first media part must be the reference")
	}
	if parts[1].InlineData == nil || parts[1].InlineData.Data != wantSub {
		t.Fatalf("second media part must be the subject")
	}
	if parts[2].Text != payload.Instruction {
		t.Fatalf("last part must be the single instruction text")
	}

	cfg := captured.GenerationConfig
	if cfg == nil || cfg.ImageConfig == nil {
		t.Fatalf("generation config missing: %+v", captured.GenerationConfig)
	}
	if cfg.ImageConfig.AspectRatio != "16:9" {
		t.Fatalf("aspect ratio = %q, want 16:9", cfg.ImageConfig.AspectRatio)
	}
	if cfg.ImageConfig.ImageSize != composer.TargetResolution {
		t.Fatalf("image size = %q, want %q", cfg.ImageConfig.ImageSize, composer.TargetResolution)
	}
}

func TestGenerateMissingCredentialBeforeNetwork(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request should be sent without a credential")
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "")
	if _, err := client.Generate(context.Background(), composeIdentityTransfer(t)); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestGenerateTextOnlyIsRefusal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(textResponse("I cannot depict this subject."))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	_, err := client.Generate(context.Background(), composeIdentityTransfer(t))
	if !errors.Is(err, domain.ErrModelRefusal) {
		t.Fatalf("expected ErrModelRefusal, got %v", err)
	}
	if got := domain.RefusalDetail(err); got != "I cannot depict this subject." {
		t.Fatalf("refusal detail = %q", got)
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiGenerateContentResponse{})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	if _, err := client.Generate(context.Background(), composeIdentityTransfer(t)); !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateBackendFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend exploded"}}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	_, err := client.Generate(context.Background(), composeIdentityTransfer(t))
	if !errors.Is(err, domain.ErrBackendFailure) {
		t.Fatalf("expected ErrBackendFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("error should pass the backend message through: %v", err)
	}
}

func TestGenerateUnauthorizedMapsToMissingCredential(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "stale-key")
	if _, err := client.Generate(context.Background(), composeIdentityTransfer(t)); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestGenerateTakesFirstImagePart(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(imageResponse([]byte("first"), []byte("second")))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	artifact, err := client.Generate(context.Background(), composeIdentityTransfer(t))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if string(artifact.Data) != "first" {
		t.Fatalf("artifact should be the first image part, got %q", artifact.Data)
	}
}

func TestRefineConstrainsEditAndRederivesAspect(t *testing.T) {
	var captured geminiGenerateContentRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(imageResponse([]byte("refined-bytes")))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	prior := domain.NewArtifact([]byte("prior-bytes"), "image/png")

	refined, err := client.Refine(context.Background(), prior, "warm up the sky", composer.OutputVerticalStory)
	if err != nil {
		t.Fatalf("Refine error: %v", err)
	}
	if string(refined.Data) != "refined-bytes" {
		t.Fatalf("unexpected refined artifact: %q", refined.Data)
	}

	parts := captured.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil {
		t.Fatalf("refine payload must be artifact then instruction, got %d parts", len(parts))
	}
	if parts[0].InlineData.Data != base64.StdEncoding.EncodeToString([]byte("prior-bytes")) {
		t.Fatalf("first part must carry the prior artifact bytes")
	}
	instruction := parts[1].Text
	for _, want := range []string{"warm up the sky", "targeted region", "Do not regenerate the image wholesale"} {
		if !strings.Contains(instruction, want) {
			t.Fatalf("refine instruction missing %q: %s", want, instruction)
		}
	}
	if captured.GenerationConfig.ImageConfig.AspectRatio != "9:16" {
		t.Fatalf("refine aspect = %q, want 9:16 for vertical-story", captured.GenerationConfig.ImageConfig.AspectRatio)
	}
}

func TestAnalyzeReturnsNotesVerbatim(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:") {
			t.Fatalf("analysis must use the text model, path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(textResponse("key light camera-left; teal-orange grade"))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	notes, err := client.Analyze(context.Background(), domain.MediaInput{Data: []byte("ref"), MIME: "image/png"})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if notes != "key light camera-left; teal-orange grade" {
		t.Fatalf("notes = %q", notes)
	}
}

func TestAssistantTurnPreservesHistoryOrder(t *testing.T) {
	var captured geminiGenerateContentRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(textResponse("Use the mockup mode for that."))
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL, "test-key")
	history := []Message{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
	}
	reply, err := client.AssistantTurn(context.Background(), history, "second question")
	if err != nil {
		t.Fatalf("AssistantTurn error: %v", err)
	}
	if reply != "Use the mockup mode for that." {
		t.Fatalf("reply = %q", reply)
	}

	if len(captured.Contents) != 3 {
		t.Fatalf("contents length = %d, want history plus current turn", len(captured.Contents))
	}
	wantOrder := []struct{ role, text string }{
		{"user", "first question"},
		{"model", "first answer"},
		{"user", "second question"},
	}
	for i, want := range wantOrder {
		got := captured.Contents[i]
		if got.Role != want.role || len(got.Parts) != 1 || got.Parts[0].Text != want.text {
			t.Fatalf("content[%d] = %+v, want role=%s text=%q", i, got, want.role, want.text)
		}
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text == "" {
		t.Fatalf("system framing must be attached")
	}
}
