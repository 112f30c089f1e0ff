package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"portfolio/pkg/config"
	"portfolio/pkg/services"
	"portfolio/pkg/storage"
)

const testDocument = `{
  "proyectos": [
    ["A", {"tipo": "simple", "imgCount": 2, "textosES": ["hola"], "textosEN": ["hi"]}],
    ["P", {
      "tipo": "complejo",
      "imgCount": {"X": 1},
      "textosES": ["general"],
      "subproyectos": [["X", {"textosES": ["equis"], "textosEN": ["ex"]}]]
    }]
  ],
  "about": {"titulo": "mokakopa", "textosES": ["sobre nosotros"], "textosEN": ["about us"]}
}`

const testSecret = "s3cret"

// fixture is a handler over a temporary data file and asset folder
type fixture struct {
	root    string
	cfg     *config.Config
	loader  *services.Loader
	handler *Handler
}

func setupFixture(t *testing.T, document string) *fixture {
	t.Helper()
	root := t.TempDir()
	assets := filepath.Join(root, "data")
	if err := os.MkdirAll(filepath.Join(assets, "A"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "A", "1.jpg"), []byte("jpeg bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if document != "" {
		if err := os.WriteFile(filepath.Join(root, "data.json"), []byte(document), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &config.Config{
		DataFile:        "data.json",
		AssetsDir:       assets,
		DefaultLanguage: "ES",
		ViewsDir:        filepath.Join(root, "views"),
		PublicDir:       filepath.Join("..", "..", "public"),
		ResolveTTL:      time.Minute,
		SecretKey:       testSecret,
	}
	loader := services.NewLoader("data.json", storage.NewDir(root))
	return &fixture{
		root:    root,
		cfg:     cfg,
		loader:  loader,
		handler: New(cfg, loader, storage.NewDir(assets)),
	}
}

func setupRouter(t *testing.T, document string) chi.Router {
	t.Helper()
	return setupFixture(t, document).handler.Routes()
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIndexHandler(t *testing.T) {
	r := setupRouter(t, testDocument)

	w := get(t, r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>mokakopa</title>",
		`lang="ES"`,
		`src="data/A/1.jpg"`,
		"<p>hola</p>",
		"<p>equis</p>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestIndexHandlerLanguageQuery(t *testing.T) {
	r := setupRouter(t, testDocument)

	body := get(t, r, "/?lang=en").Body.String()
	if !strings.Contains(body, `lang="EN"`) || !strings.Contains(body, "<p>hi</p>") {
		t.Errorf("EN page not rendered in English")
	}
	// P has no English text and falls back to Spanish
	if !strings.Contains(body, "<p>general</p>") {
		t.Errorf("fallback text missing")
	}

	body = get(t, r, "/?lang=xx").Body.String()
	if !strings.Contains(body, `lang="ES"`) {
		t.Errorf("unsupported language not ignored")
	}
}

func TestIndexHandlerLoadError(t *testing.T) {
	r := setupRouter(t, "")

	w := get(t, r, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Error al cargar el portfolio", "failed to load data.json", "Por favor, recarga la página."} {
		if !strings.Contains(body, want) {
			t.Errorf("error page missing %q", want)
		}
	}
	if strings.Contains(body, "gallery") {
		t.Error("error page rendered a gallery")
	}
}

func TestDocumentHandler(t *testing.T) {
	r := setupRouter(t, testDocument)

	w := get(t, r, "/api/document")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var doc struct {
		Projects [][]json.RawMessage `json:"proyectos"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Projects) != 2 {
		t.Errorf("projects = %d, want 2", len(doc.Projects))
	}
}

func TestTextsHandler(t *testing.T) {
	r := setupRouter(t, testDocument)

	tests := []struct {
		query string
		lang  string
		a, x  string
		about string
	}{
		{"", "ES", "hola", "equis", "sobre nosotros"},
		{"?lang=en", "EN", "hi", "ex", "about us"},
		{"?lang=fr", "FR", "hola", "equis", "sobre nosotros"},
	}
	for _, tt := range tests {
		w := get(t, r, "/api/texts"+tt.query)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, w.Code)
		}
		var resp textsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tt.query, err)
		}
		if resp.Language != tt.lang {
			t.Errorf("%s: language = %q, want %q", tt.query, resp.Language, tt.lang)
		}
		if got := resp.Texts["A"]; len(got) != 1 || got[0] != tt.a {
			t.Errorf("%s: A = %v", tt.query, got)
		}
		if got := resp.Texts["X"]; len(got) != 1 || got[0] != tt.x {
			t.Errorf("%s: X = %v", tt.query, got)
		}
		if len(resp.About) != 1 || resp.About[0] != tt.about {
			t.Errorf("%s: about = %v", tt.query, resp.About)
		}
	}
}

func TestTextsHandlerLoadError(t *testing.T) {
	r := setupRouter(t, "{broken")
	w := get(t, r, "/api/texts")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid document") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAssetHandler(t *testing.T) {
	r := setupRouter(t, testDocument)

	w := get(t, r, "/data/A/1.jpg")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.String() != "jpeg bytes" {
		t.Errorf("body = %q", w.Body.String())
	}

	if w := get(t, r, "/data/A/2.jpg"); w.Code != http.StatusNotFound {
		t.Errorf("missing asset status = %d, want 404", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	w := get(t, setupRouter(t, testDocument), "/healthz")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("healthz = %d %s", w.Code, w.Body.String())
	}
}

func dialLive(t *testing.T, r http.Handler, query string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/live" + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) liveMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg liveMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestLiveLanguageSwitch(t *testing.T) {
	conn := dialLive(t, setupRouter(t, testDocument), "")

	if err := conn.WriteJSON(services.Event{Type: services.EventLanguage, Lang: "EN"}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Error != "" || msg.Update == nil {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Update.Language != "EN" {
		t.Errorf("language = %q", msg.Update.Language)
	}
	if len(msg.Update.Texts) != 3 {
		t.Errorf("texts = %d, want 3", len(msg.Update.Texts))
	}
}

func TestLiveErrors(t *testing.T) {
	conn := dialLive(t, setupRouter(t, testDocument), "")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Error != "invalid message format" {
		t.Errorf("error = %q", msg.Error)
	}

	if err := conn.WriteJSON(services.Event{Type: "wiggle"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); !strings.Contains(msg.Error, "unknown event type") {
		t.Errorf("error = %q", msg.Error)
	}
}

func TestLiveAboutOverlay(t *testing.T) {
	conn := dialLive(t, setupRouter(t, testDocument), "?lang=EN")

	if err := conn.WriteJSON(services.Event{Type: services.EventClick, Target: "site-name"}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Update == nil || msg.Update.About == nil || !msg.Update.About.Open {
		t.Fatalf("message = %+v", msg)
	}
	if !strings.Contains(msg.Update.About.HTML, "about us") {
		t.Errorf("about html = %q", msg.Update.About.HTML)
	}
}

func TestLiveLoadError(t *testing.T) {
	server := httptest.NewServer(setupRouter(t, ""))
	defer server.Close()

	resp, err := http.Get(server.URL + "/live")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusInternalServerError || !strings.Contains(string(body), "failed to load") {
		t.Errorf("status = %d body = %s", resp.StatusCode, body)
	}
}

func post(t *testing.T, r http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateCountsHandler(t *testing.T) {
	r := setupRouter(t, testDocument)

	w := post(t, r, "/"+testSecret+"/admin/update-counts", `{"dryRun": true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Total int  `json:"total"`
		Saved bool `json:"saved"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || resp.Saved {
		t.Errorf("response = %+v, want 1 image and not saved", resp)
	}

	if w := post(t, r, "/"+testSecret+"/admin/update-counts", "{nope"); w.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", w.Code)
	}

	if w := post(t, r, "/"+testSecret+"/admin/update-counts", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := get(t, r, "/api/document").Body.String()
	if !strings.Contains(body, `"imgCount": 1`) {
		t.Errorf("saved document = %s", body)
	}
}

func TestReloadHandler(t *testing.T) {
	r := setupRouter(t, testDocument)
	if w := post(t, r, "/"+testSecret+"/admin/reload", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := get(t, r, "/"+testSecret+"/admin/reload"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", w.Code)
	}
}

func TestAdminRoutesNeedSecret(t *testing.T) {
	r := setupRouter(t, testDocument)
	for _, target := range []string{"/admin/reload", "/wrong/admin/reload", "/admin/update-counts"} {
		if w := post(t, r, target, ""); w.Code != http.StatusNotFound {
			t.Errorf("POST %s status = %d, want 404", target, w.Code)
		}
	}

	f := setupFixture(t, testDocument)
	f.cfg.SecretKey = ""
	unguarded := f.handler.Routes()
	for _, target := range []string{"/admin/reload", "/admin/update-counts"} {
		if w := post(t, unguarded, target, ""); w.Code != http.StatusNotFound {
			t.Errorf("POST %s without a secret key = %d, want 404", target, w.Code)
		}
	}
}

func TestUpdateCountsLeavesLoadedDocument(t *testing.T) {
	f := setupFixture(t, `{"proyectos": [["A", {"tipo": "simple", "imgCount": 7}]]}`)
	r := f.handler.Routes()

	held, err := f.loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if w := post(t, r, "/"+testSecret+"/admin/update-counts", `{"dryRun": true}`); w.Code != http.StatusOK {
		t.Fatalf("dry run status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := held.Projects[0].Project.ImageCount.Total; got != 7 {
		t.Errorf("held document count after dry run = %d, want 7", got)
	}
	if again, _ := f.loader.Load(context.Background()); again != held {
		t.Error("dry run replaced the loaded document")
	}

	if w := post(t, r, "/"+testSecret+"/admin/update-counts", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := held.Projects[0].Project.ImageCount.Total; got != 7 {
		t.Errorf("held document count after save = %d, want 7", got)
	}
	saved, err := f.loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if saved == held || saved.Projects[0].Project.ImageCount.Total != 1 {
		t.Errorf("saved document count = %d, want a new document with 1", saved.Projects[0].Project.ImageCount.Total)
	}
}

func TestUpdateCountsKeepsUnknownKeys(t *testing.T) {
	f := setupFixture(t, `{
  "version": 2,
  "proyectos": [
    ["A", {"id": 10, "tipo": "simple", "imgCount": 5, "extra": {"k": "v"}, "textosES": ["hola"]}],
    ["P", {"tipo": "complejo", "imgCount": {}, "subproyectos": [["X", {"textosES": ["equis"]}]]}]
  ],
  "about": {"titulo": "mokakopa", "email": "hola@example.com"}
}`)
	r := f.handler.Routes()

	if w := post(t, r, "/"+testSecret+"/admin/update-counts", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	data, err := os.ReadFile(filepath.Join(f.root, "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	var saved struct {
		Version  int                 `json:"version"`
		Projects [][]json.RawMessage `json:"proyectos"`
		About    map[string]any      `json:"about"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved document: %v\n%s", err, data)
	}
	if saved.Version != 2 {
		t.Errorf("top-level version lost:\n%s", data)
	}
	if saved.About["email"] != "hola@example.com" {
		t.Errorf("about email lost: %v", saved.About)
	}

	var a map[string]any
	if err := json.Unmarshal(saved.Projects[0][1], &a); err != nil {
		t.Fatal(err)
	}
	if a["id"] != float64(10) || a["extra"] == nil {
		t.Errorf("project A lost keys: %v", a)
	}
	if a["imgCount"] != float64(1) {
		t.Errorf("project A imgCount = %v, want 1", a["imgCount"])
	}

	var p struct {
		Subprojects [][]json.RawMessage `json:"subproyectos"`
	}
	if err := json.Unmarshal(saved.Projects[1][1], &p); err != nil {
		t.Fatal(err)
	}
	var x map[string]any
	if err := json.Unmarshal(p.Subprojects[0][1], &x); err != nil {
		t.Fatal(err)
	}
	if _, ok := x["tipo"]; ok {
		t.Errorf("subproject gained tipo: %v", x)
	}
	if _, ok := x["imgCount"]; ok {
		t.Errorf("subproject gained imgCount: %v", x)
	}
}

func TestPublicScriptForwardsTouch(t *testing.T) {
	w := get(t, setupRouter(t, testDocument), "/public/live.js")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	script := w.Body.String()
	for _, want := range []string{
		`"touchstart"`, `"touchmove"`, `"touchend"`, `"touchcancel"`, `"pointercancel"`,
		`type: "touch-start"`, `type: "touch-move"`, `type: "touch-end"`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("live.js does not contain %s", want)
		}
	}
}
