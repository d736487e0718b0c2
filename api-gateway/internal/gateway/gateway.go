package gateway

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const apiPrefix = "/api"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	OrderSvcURL string
	StaticDir   string
}

type Gateway struct {
	config Config
	client HTTPClient
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	config.OrderSvcURL = strings.TrimRight(config.OrderSvcURL, "/")
	return &Gateway{
		config: config,
		client: client,
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"service":   "api-gateway",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ProxyAPI forwards /api/... to the order service with the prefix removed.
func (g *Gateway) ProxyAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	if path == "" {
		path = "/"
	}
	g.ProxyRequest(w, r, g.config.OrderSvcURL, path)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL, path string) {
	url := targetURL + path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}
	log.Printf("[GATEWAY] %s %s -> %s", r.Method, r.URL.Path, url)

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		log.Printf("[GATEWAY] failed to create request: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	if r.RemoteAddr != "" {
		req.Header.Set("X-Forwarded-For", r.RemoteAddr)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[GATEWAY] failed to proxy to %s: %v", targetURL, err)
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("[GATEWAY] failed to copy response: %v", err)
	}
}

// ServeApp serves built SPA assets and falls back to index.html so that
// client-side routes load the app.
func (g *Gateway) ServeApp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	root := filepath.Clean(g.config.StaticDir)
	name := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}

	index := filepath.Join(root, "index.html")
	if _, err := os.Stat(index); err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	http.ServeFile(w, r, index)
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix(apiPrefix + "/").HandlerFunc(g.ProxyAPI)
	r.Handle(apiPrefix, http.HandlerFunc(g.ProxyAPI))
	r.PathPrefix("/").HandlerFunc(g.ServeApp)
	return r
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}
