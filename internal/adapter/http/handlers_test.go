package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	cfhttp "github.com/Strob0t/AgentForge/internal/adapter/http"
	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/domain/codegen"
	"github.com/Strob0t/AgentForge/internal/domain/dialogue"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
	"github.com/Strob0t/AgentForge/internal/service"
)

var errProvider = errors.New("provider down")

func newTestRouter(t *testing.T, gen textgen.Generator, bodyLimit int64) chi.Router {
	t.Helper()
	d := service.NewDelegator(gen, time.Second)
	h := &cfhttp.Handlers{
		Generator:    service.NewGeneratorService(d, codegen.Options{}),
		Chat:         service.NewChatService(d, nil, agent.DefaultHistoryWindow),
		Provider:     d.Provider(),
		Version:      "test",
		MaxBodyBytes: bodyLimit,
	}
	r := chi.NewRouter()
	cfhttp.MountRoutes(r, h)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

const moderatorBody = `{"name":"Content Moderator","description":"Moderates community posts","functionality":"Review text for spam"}`

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil, 0)
	rec := do(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" || body["provider"] != "none" {
		t.Fatalf("body = %v", body)
	}
}

func TestAPIVersion(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodGet, "/api/v1/", "")
	if body := decode[map[string]string](t, rec); body["version"] != "test" {
		t.Fatalf("body = %v", body)
	}
}

func TestGenerateAgent(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodPost, "/api/v1/agents/generate", moderatorBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	res := decode[service.GeneratedAgent](t, rec)
	if res.ClassName != "ContentModeratorAgent" || res.WorkerName != "content-moderator" {
		t.Fatalf("names = %q %q", res.ClassName, res.WorkerName)
	}
	if res.Source != service.SourceLocal || res.Variant != codegen.VariantClassic {
		t.Fatalf("source/variant = %q %q", res.Source, res.Variant)
	}
	if !strings.Contains(res.Code, "export class ContentModeratorAgent extends Agent<Env, AgentState>") {
		t.Fatal("code missing class declaration")
	}
	if !res.IdentifierValid {
		t.Fatal("identifier_valid = false for a plain name")
	}
}

func TestGenerateAgentInvalidIdentifier(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodPost, "/api/v1/agents/generate",
		`{"name":"Bot-9000","description":"d","functionality":"f"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if v, ok := body["identifier_valid"].(bool); !ok || v {
		t.Fatalf("identifier_valid = %v", body["identifier_valid"])
	}
}

func TestGenerateAgentFallbackMatchesDisabled(t *testing.T) {
	failing := textgen.Func(func(context.Context, textgen.Request) (string, error) { return "", errProvider })

	a := decode[service.GeneratedAgent](t, do(t, newTestRouter(t, nil, 0), http.MethodPost, "/api/v1/agents/generate", moderatorBody))
	b := decode[service.GeneratedAgent](t, do(t, newTestRouter(t, failing, 0), http.MethodPost, "/api/v1/agents/generate", moderatorBody))
	if a != b {
		t.Fatal("failing provider must yield the same response as no provider")
	}
}

func TestGenerateAgentValidation(t *testing.T) {
	r := newTestRouter(t, nil, 0)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"description":"d","functionality":"f"}`, "name is required"},
		{"blank description", `{"name":"n","description":"  ","functionality":"f"}`, "description is required"},
		{"unknown variant", `{"name":"n","description":"d","functionality":"f","variant":"neon"}`, `unknown variant "neon"`},
		{"unknown escaping", `{"name":"n","description":"d","functionality":"f","escaping":"html"}`, `unknown escaping "html"`},
		{"malformed json", `{"name":`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/v1/agents/generate", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := decode[map[string]string](t, rec)["error"]; got != tt.want {
				t.Fatalf("error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateAgentBodyTooLarge(t *testing.T) {
	r := newTestRouter(t, nil, 64)
	body := `{"name":"n","description":"d","functionality":"` + strings.Repeat("x", 200) + `"}`
	rec := do(t, r, http.MethodPost, "/api/v1/agents/generate", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPreviewAgent(t *testing.T) {
	r := newTestRouter(t, nil, 0)
	rec := do(t, r, http.MethodPost, "/api/v1/agents/preview",
		`{"name":"Content Moderator","description":"Moderates community posts","functionality":"Review text for spam","variant":"enhanced"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	spec := agent.Spec{Name: "Content Moderator", Description: "Moderates community posts", Functionality: "Review text for spam"}
	want := codegen.MustSynthesize(spec, codegen.Options{Variant: codegen.VariantEnhanced})
	if rec.Body.String() != want {
		t.Fatal("preview body differs from local synthesis")
	}
}

func TestChat(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodPost, "/api/v1/chat", `{"message":"I want a customer support bot"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	reply := decode[service.ChatReply](t, rec)
	if !strings.Contains(reply.Reply, "A customer support agent") || reply.Source != service.SourceLocal {
		t.Fatalf("reply = %+v", reply)
	}
	if reply.Suggestion == nil || reply.Suggestion.Name != "Customer Support Bot" {
		t.Fatalf("suggestion = %+v", reply.Suggestion)
	}
}

func TestChatGenericEchoesInput(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodPost, "/api/v1/chat", `{"message":"asdfghjkl"}`)
	reply := decode[service.ChatReply](t, rec)
	if !strings.Contains(reply.Reply, "asdfghjkl") || reply.Category != dialogue.CategoryGeneric || reply.Suggestion != nil {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestChatExternalProvider(t *testing.T) {
	var gotHistory int
	gen := textgen.Func(func(_ context.Context, req textgen.Request) (string, error) {
		gotHistory = len(req.History)
		return "external says hi", nil
	})
	body := `{"message":"hello","history":[{"role":"user","content":"a"},{"role":"assistant","content":"b"}]}`
	reply := decode[service.ChatReply](t, do(t, newTestRouter(t, gen, 0), http.MethodPost, "/api/v1/chat", body))
	if reply.Reply != "external says hi" || reply.Source != service.SourceExternal || gotHistory != 2 {
		t.Fatalf("reply = %+v, history %d", reply, gotHistory)
	}
}

func TestChatValidation(t *testing.T) {
	r := newTestRouter(t, nil, 0)
	rec := do(t, r, http.MethodPost, "/api/v1/chat", `{"message":"hi","history":[{"role":"system","content":"x"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad role: status = %d", rec.Code)
	}

	long, _ := json.Marshal(map[string]string{"message": strings.Repeat("a", service.MaxMessageLen+1)})
	rec = do(t, r, http.MethodPost, "/api/v1/chat", string(long))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("long message: status = %d", rec.Code)
	}
}

func TestSuggestFields(t *testing.T) {
	r := newTestRouter(t, nil, 0)

	rec := do(t, r, http.MethodPost, "/api/v1/chat/suggest", `{"message":"we need spam moderation"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Suggestion dialogue.Suggestion `json:"suggestion"`
	}
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Suggestion.Name != "Content Moderator" || body.Suggestion.Functionality != "we need spam moderation" {
		t.Fatalf("suggestion = %+v", body.Suggestion)
	}

	rec = do(t, r, http.MethodPost, "/api/v1/chat/suggest", `{"message":"how do i deploy with wrangler"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("guidance-only: status = %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	r := newTestRouter(t, nil, 0)

	rules := decode[[]dialogue.Rule](t, do(t, r, http.MethodGet, "/api/v1/chat/categories", ""))
	if len(rules) != len(dialogue.Rules()) || rules[0].Category != dialogue.CategoryCustomerSupport {
		t.Fatalf("rules = %+v", rules)
	}

	rule := decode[dialogue.Rule](t, do(t, r, http.MethodGet, "/api/v1/chat/categories/ecommerce", ""))
	if rule.DefaultName != "Shopping Assistant" {
		t.Fatalf("rule = %+v", rule)
	}

	rec := do(t, r, http.MethodGet, "/api/v1/chat/categories/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown category: status = %d", rec.Code)
	}
}

func TestListVariants(t *testing.T) {
	rec := do(t, newTestRouter(t, nil, 0), http.MethodGet, "/api/v1/variants", "")
	var body struct {
		Variants        []string `json:"variants"`
		Escapings       []string `json:"escapings"`
		DefaultVariant  string   `json:"default_variant"`
		DefaultEscaping string   `json:"default_escaping"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Variants) != 2 || len(body.Escapings) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.DefaultVariant != "classic" || body.DefaultEscaping != "contextual" {
		t.Fatalf("defaults = %+v", body)
	}
}
