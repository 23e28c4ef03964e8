package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/promptbox/internal/ai"
	"github.com/starford/promptbox/internal/models"
	"github.com/starford/promptbox/internal/projectservice"
	"github.com/starford/promptbox/internal/settings"
	"github.com/starford/promptbox/internal/testutil"
)

// stubProvider echoes deterministic output so AI routes are testable
// without network access.
type stubProvider struct {
	lastSystem string
	lastUser   string
}

func (s *stubProvider) Generate(_ context.Context, systemPrompt, userPrompt string, _ ai.Params) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	return "generated:" + userPrompt, nil
}

func (s *stubProvider) GenerateImage(_ context.Context, prompt string, _ ai.Params) (string, error) {
	return "https://img.example/" + prompt, nil
}

func (s *stubProvider) Name() string { return "stub" }

// testEnv sets up a temp store, SQLite index, service, and router.
// authToken == "" runs the API in disabled-auth mode.
func testEnv(t *testing.T, authToken string) (*projectservice.Service, http.Handler, *stubProvider) {
	t.Helper()

	st := testutil.TestStore(t)
	db := testutil.TestDB(t)

	svc := projectservice.NewService(st, db, nil)
	setStore := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	_ = setStore.Save(settings.Settings{
		OpenAIAPIKey: "test-key",
		OpenAIModel:  "gpt-4",
		Provider:     "openai",
	})

	stub := &stubProvider{}
	factory := func(ai.Config) (ai.Provider, error) { return stub, nil }

	router := NewRouter(svc, setStore, factory, authToken != "", authToken, nil)
	return svc, router, stub
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestProjectLifecycle(t *testing.T) {
	_, router, _ := testEnv(t, "")

	// Create category "Marketing".
	w := do(t, router, http.MethodPost, "/categories", CreateCategoryRequest{Name: "Marketing"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category = %d, body = %s", w.Code, w.Body.String())
	}
	cat := decode[models.Category](t, w)

	// Create project "Ad Copy" in it.
	w = do(t, router, http.MethodPost, "/projects", CreateProjectRequest{Name: "Ad Copy", CategoryID: cat.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("create project = %d, body = %s", w.Code, w.Body.String())
	}
	p := decode[models.Project](t, w)
	if p.CurrentContent != "" {
		t.Errorf("new project content = %q, want empty", p.CurrentContent)
	}

	// Append two versions.
	w = do(t, router, http.MethodPost, "/projects/"+p.ID+"/versions", CreateVersionRequest{Content: "Buy now"})
	if w.Code != http.StatusCreated {
		t.Fatalf("append v1 = %d", w.Code)
	}
	v1 := decode[models.Version](t, w)
	if v1.VersionNum != 1 {
		t.Errorf("v1.VersionNum = %d, want 1", v1.VersionNum)
	}

	w = do(t, router, http.MethodPost, "/projects/"+p.ID+"/versions", CreateVersionRequest{Content: "Buy now v2"})
	v2 := decode[models.Version](t, w)
	if v2.VersionNum != 2 {
		t.Errorf("v2.VersionNum = %d, want 2", v2.VersionNum)
	}

	// History is newest-first.
	w = do(t, router, http.MethodGet, "/projects/"+p.ID+"/versions", nil)
	versions := decode[[]models.Version](t, w)
	if len(versions) != 2 || versions[0].VersionNum != 2 || versions[1].VersionNum != 1 {
		t.Errorf("versions order = %+v, want [v2, v1]", versions)
	}

	// Current content tracks the latest version.
	w = do(t, router, http.MethodGet, "/projects/"+p.ID, nil)
	got := decode[models.Project](t, w)
	if got.CurrentContent != "Buy now v2" {
		t.Errorf("current content = %q, want Buy now v2", got.CurrentContent)
	}

	// Delete.
	w = do(t, router, http.MethodDelete, "/projects/"+p.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/projects/"+p.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	_, router, _ := testEnv(t, "")

	// 404 on unknown project.
	if w := do(t, router, http.MethodGet, "/projects/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown project = %d, want 404", w.Code)
	}

	// 400 on invalid create.
	if w := do(t, router, http.MethodPost, "/projects", CreateProjectRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty name = %d, want 400", w.Code)
	}

	// 409 on duplicate category.
	if w := do(t, router, http.MethodPost, "/categories", CreateCategoryRequest{Name: "Dup"}); w.Code != http.StatusCreated {
		t.Fatalf("first category = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/categories", CreateCategoryRequest{Name: "Dup"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate category = %d, want 409", w.Code)
	}

	// 400 on malformed JSON.
	req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON = %d, want 400", w.Code)
	}
}

func TestListProjectsFilters(t *testing.T) {
	_, router, _ := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/projects", CreateProjectRequest{Name: "Slogan Generator", CategoryID: "marketing"})
	slogan := decode[models.Project](t, w)
	do(t, router, http.MethodPost, "/projects", CreateProjectRequest{Name: "Parser", CategoryID: "coding"})

	do(t, router, http.MethodPost, "/projects/"+slogan.ID+"/favorite", nil)

	list := decode[ProjectListResponse](t, do(t, router, http.MethodGet, "/projects", nil))
	if list.Total != 2 {
		t.Fatalf("total = %d, want 2", list.Total)
	}

	list = decode[ProjectListResponse](t, do(t, router, http.MethodGet, "/projects?category=coding", nil))
	if list.Total != 1 || list.Projects[0].Name != "Parser" {
		t.Errorf("category filter = %+v", list)
	}

	list = decode[ProjectListResponse](t, do(t, router, http.MethodGet, "/projects?is_favorite=true", nil))
	if list.Total != 1 || list.Projects[0].ID != slogan.ID {
		t.Errorf("favorite filter = %+v", list)
	}

	list = decode[ProjectListResponse](t, do(t, router, http.MethodGet, "/projects?search=slogan", nil))
	if list.Total != 1 || list.Projects[0].ID != slogan.ID {
		t.Errorf("search filter = %+v", list)
	}
}

func TestUpdateProjectMovesCategory(t *testing.T) {
	svc, router, _ := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/projects", CreateProjectRequest{Name: "Mover", CategoryID: "drafts"})
	p := decode[models.Project](t, w)

	target := "published"
	w = do(t, router, http.MethodPut, "/projects/"+p.ID, UpdateProjectRequest{CategoryID: &target})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	got := decode[models.Project](t, w)
	if got.CategoryID != "published" {
		t.Errorf("category = %q, want published", got.CategoryID)
	}

	root := svc.Store().Root()
	if _, err := os.Stat(filepath.Join(root, "published", p.ID+".json")); err != nil {
		t.Error("project files not moved")
	}
}

func TestLegacyMigrationThroughAPI(t *testing.T) {
	svc, router, _ := testEnv(t, "")
	root := svc.Store().Root()

	dir := filepath.Join(root, "imported")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw := []byte("---\nname: Old\ntags:\n  - a\n  - b\n---\nHello")
	if err := os.WriteFile(filepath.Join(dir, "old.md"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	// Listing must not migrate.
	list := decode[ProjectListResponse](t, do(t, router, http.MethodGet, "/projects", nil))
	if list.Total != 1 {
		t.Fatalf("total = %d, want 1", list.Total)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.json")); !os.IsNotExist(err) {
		t.Fatal("listing migrated the legacy file")
	}

	// Reading migrates and strips the header exactly.
	w := do(t, router, http.MethodGet, "/projects/old", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	p := decode[models.Project](t, w)
	if p.Name != "Old" || len(p.Tags) != 2 {
		t.Errorf("migrated project = %+v", p)
	}
	if p.CurrentContent != "Hello" {
		t.Errorf("content = %q, want Hello", p.CurrentContent)
	}
	body, err := os.ReadFile(filepath.Join(dir, "old.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "Hello" {
		t.Errorf("file body = %q, want Hello", string(body))
	}
}

func TestCategoryReorder(t *testing.T) {
	_, router, _ := testEnv(t, "")

	a := decode[models.Category](t, do(t, router, http.MethodPost, "/categories", CreateCategoryRequest{Name: "Alpha"}))
	b := decode[models.Category](t, do(t, router, http.MethodPost, "/categories", CreateCategoryRequest{Name: "Beta"}))

	w := do(t, router, http.MethodPut, "/categories/reorder", []models.CategoryOrder{
		{ID: a.ID, SortOrder: 2},
		{ID: b.ID, SortOrder: 1},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder = %d", w.Code)
	}

	cats := decode[[]models.Category](t, do(t, router, http.MethodGet, "/categories", nil))
	if len(cats) != 2 || cats[0].ID != b.ID {
		t.Errorf("order after reorder = %+v, want Beta first", cats)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	_, router, _ := testEnv(t, "")

	got := decode[settings.Settings](t, do(t, router, http.MethodGet, "/settings", nil))
	if got.OpenAIModel != "gpt-4" {
		t.Errorf("model = %q, want gpt-4", got.OpenAIModel)
	}

	got.OpenAIModel = "gpt-4o"
	w := do(t, router, http.MethodPut, "/settings", got)
	if w.Code != http.StatusOK {
		t.Fatalf("put settings = %d", w.Code)
	}
	again := decode[settings.Settings](t, do(t, router, http.MethodGet, "/settings", nil))
	if again.OpenAIModel != "gpt-4o" {
		t.Errorf("model after update = %q, want gpt-4o", again.OpenAIModel)
	}
}

func TestOptimizeUsesTemplateAsSystemPrompt(t *testing.T) {
	_, router, stub := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/ai/optimize", OptimizeRequest{Prompt: "write better"})
	if w.Code != http.StatusOK {
		t.Fatalf("optimize = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[OptimizeResponse](t, w)
	if resp.OptimizedPrompt != "generated:write better" {
		t.Errorf("optimized = %q", resp.OptimizedPrompt)
	}
	if stub.lastSystem != settings.DefaultOptimizeTemplate {
		t.Errorf("system prompt = %q, want default template", stub.lastSystem)
	}
}

func TestRunTextAndImage(t *testing.T) {
	_, router, _ := testEnv(t, "")

	resp := decode[RunResponse](t, do(t, router, http.MethodPost, "/ai/run", RunRequest{Prompt: "hi"}))
	if resp.Result != "generated:hi" {
		t.Errorf("text run = %q", resp.Result)
	}

	resp = decode[RunResponse](t, do(t, router, http.MethodPost, "/ai/run", RunRequest{Prompt: "cat", Type: "image"}))
	if resp.Result != "https://img.example/cat" {
		t.Errorf("image run = %q", resp.Result)
	}

	if w := do(t, router, http.MethodPost, "/ai/run", RunRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty prompt = %d, want 400", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, "")

	p := decode[models.Project](t, do(t, router, http.MethodPost, "/projects", CreateProjectRequest{Name: "Unicorn Pitch"}))

	resp := decode[SearchResponse](t, do(t, router, http.MethodGet, "/search?q=unicorn", nil))
	if len(resp.Results) != 1 || resp.Results[0].ID != p.ID {
		t.Errorf("search = %+v, want %s", resp.Results, p.ID)
	}

	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	_, router, _ := testEnv(t, "secret")

	// No token.
	if w := do(t, router, http.MethodGet, "/projects", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}
