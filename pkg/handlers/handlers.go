package handlers

import (
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/eknkc/pug"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"portfolio/pkg/config"
	"portfolio/pkg/models"
	"portfolio/pkg/render"
	"portfolio/pkg/services"
	"portfolio/pkg/storage"
)

// Handler serves the portfolio over HTTP
type Handler struct {
	cfg      *config.Config
	loader   *services.Loader
	assets   storage.AssetStore
	resolver *services.Resolver
	upgrader websocket.Upgrader
}

// New creates a handler reading the document through loader and images from assets
func New(cfg *config.Config, loader *services.Loader, assets storage.AssetStore) *Handler {
	return &Handler{
		cfg:      cfg,
		loader:   loader,
		assets:   assets,
		resolver: services.NewResolver(assets, cfg.ResolveTTL),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes builds the router with every endpoint
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", h.IndexHandler)
	r.Get("/live", h.LiveHandler)
	r.Get("/data/*", h.AssetHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			MaxAge:         300,
		}))
		r.Get("/document", h.DocumentHandler)
		r.Get("/texts", h.TextsHandler)
	})

	// Admin actions rewrite the data file; they are only reachable below
	// the secret path segment and not mounted at all without one
	if h.cfg.SecretKey != "" {
		r.Route(fmt.Sprintf("/%s/admin", h.cfg.SecretKey), func(r chi.Router) {
			r.Post("/update-counts", h.UpdateCountsHandler)
			r.Post("/reload", h.ReloadHandler)
		})
	}

	fileServer := http.FileServer(http.Dir(h.cfg.PublicDir))
	r.Handle("/public/*", http.StripPrefix("/public/", fileServer))

	return r
}

// pageOptions builds the page options for a request. The lang query
// parameter selects the initial language when it is supported.
func (h *Handler) pageOptions() services.Options {
	return services.Options{
		Language:  h.cfg.DefaultLanguage,
		Languages: h.cfg.Languages,
		Resolver:  h.resolver,
	}
}

func (h *Handler) newPage(r *http.Request, doc *models.Document) *services.Page {
	page := services.NewPage(r.Context(), doc, h.pageOptions())
	if lang := r.URL.Query().Get("lang"); lang != "" {
		page.SetLanguage(lang)
	}
	return page
}

// indexView is the data passed to the page layout
type indexView struct {
	Title     string
	Lang      string
	Languages []string
	Body      template.HTML
}

// IndexHandler renders the full portfolio page
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.loader.Load(r.Context())
	if err != nil {
		log.Printf("Error loading document: %v", err)
		h.renderError(w, err)
		return
	}

	page := h.newPage(r, doc)
	defer page.Close()
	log.Println("Generating Portfolio Page: " + page.Language())

	body, err := page.HTML()
	if err != nil {
		log.Printf("Render error: %v", err)
		h.renderError(w, err)
		return
	}

	view := indexView{
		Title:     siteTitle(doc),
		Lang:      page.Language(),
		Languages: page.Languages(),
		Body:      template.HTML(body),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tpl, err := pug.CompileFile(filepath.Join(h.cfg.ViewsDir, "index.pug"), pug.Options{})
	if err != nil {
		log.Printf("Template error: %v", err)
		writeShell(w, view.Lang, view.Title, body)
		return
	}
	if err := tpl.Execute(w, view); err != nil {
		log.Printf("Template execution error: %v", err)
	}
}

func siteTitle(doc *models.Document) string {
	if doc.About != nil && doc.About.Title != "" {
		return doc.About.Title
	}
	return "Portfolio"
}

// writeShell wraps body in a bare document when no layout is available
func writeShell(w io.Writer, lang, title, body string) {
	fmt.Fprintf(w, "<!DOCTYPE html><html lang=\"%s\"><head><meta charset=\"utf-8\"><title>%s</title></head><body>%s</body></html>",
		html.EscapeString(lang), html.EscapeString(title), body)
}

// renderError replaces the page with the load error view
func (h *Handler) renderError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)

	tpl, tplErr := pug.CompileFile(filepath.Join(h.cfg.ViewsDir, "error.pug"), pug.Options{})
	if tplErr == nil {
		if tplErr = tpl.Execute(w, struct{ Message string }{err.Error()}); tplErr == nil {
			return
		}
	}
	log.Printf("Template error: %v", tplErr)

	body, renderErr := render.String(services.ErrorView(err))
	if renderErr != nil {
		fmt.Fprintf(w, "Error al cargar el portfolio: %s. Por favor, recarga la página.", html.EscapeString(err.Error()))
		return
	}
	writeShell(w, models.DefaultLanguage, "Error", body)
}

// DocumentHandler returns the portfolio document as JSON
func (h *Handler) DocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.loader.Load(r.Context())
	if err != nil {
		log.Printf("Error loading document: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := services.Encode(doc)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// textsResponse is the text of every record in one language
type textsResponse struct {
	Language string              `json:"language"`
	Texts    map[string][]string `json:"texts"`
	About    []string            `json:"about,omitempty"`
}

// TextsHandler returns the paragraphs of every project and subproject in
// the requested language, falling back to the default language
func (h *Handler) TextsHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.loader.Load(r.Context())
	if err != nil {
		log.Printf("Error loading document: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	lang := services.NormalizeLanguage(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = h.cfg.DefaultLanguage
	}
	resp := textsResponse{Language: lang, Texts: map[string][]string{}}
	for _, np := range doc.Projects {
		names := []string{np.Name}
		if np.Project != nil {
			for _, sub := range np.Project.Subprojects {
				names = append(names, sub.Name)
			}
		}
		for _, name := range names {
			if rec, ok := doc.FindTextRecord(name); ok {
				resp.Texts[name] = rec.TextsFor(lang)
			}
		}
	}
	if doc.About != nil {
		resp.About = doc.About.TextsFor(lang)
	}
	writeJSON(w, http.StatusOK, resp)
}

// AssetHandler streams an image from the asset store
func (h *Handler) AssetHandler(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	rc, err := h.assets.Open(r.Context(), key)
	if errors.Is(err, storage.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("Error opening asset %s: %v", key, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Error writing asset %s: %v", key, err)
	}
}
