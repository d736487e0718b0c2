package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"flash-delivery/events"
	"flash-delivery/order-svc/internal/domain"
	"flash-delivery/order-svc/internal/service"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

var bearerPattern = regexp.MustCompile(`(?i)Bearer\s+(.*)`)

type Handler struct {
	Orders  service.OrderServiceInterface
	Catalog service.CatalogServiceInterface
	Auth    service.Authenticator
	Stats   service.StatsReader
}

func NewHandler(orders service.OrderServiceInterface, catalog service.CatalogServiceInterface, auth service.Authenticator, stats service.StatsReader) *Handler {
	return &Handler{
		Orders:  orders,
		Catalog: catalog,
		Auth:    auth,
		Stats:   stats,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.root).Methods("GET")
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/menus", h.getMenus).Methods("GET")
	r.HandleFunc("/categories", h.getCategories).Methods("GET")
	r.HandleFunc("/stores", h.getStores).Methods("GET")
	r.HandleFunc("/stores/search", h.searchStores).Methods("GET")
	r.HandleFunc("/stores/{id:[0-9]+}", h.getStore).Methods("GET")
	r.HandleFunc("/stores/{id:[0-9]+}/menu", h.getStoreMenu).Methods("GET")

	r.HandleFunc("/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/orders/{uuid:[A-Za-z0-9_-]+}", h.getOrder).Methods("GET")
	r.HandleFunc("/orders/{uuid:[A-Za-z0-9_-]+}/qrcode", h.getOrderQRCode).Methods("GET")

	r.HandleFunc("/admin/login", h.adminLogin).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/orders", h.adminListOrders).Methods("GET")
	admin.HandleFunc("/orders/{id:[0-9]+}", h.adminUpdateStatus).Methods("PATCH")
	admin.HandleFunc("/stats", h.adminStats).Methods("GET")

	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(preflight)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getMenus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Menus())
}

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Categories())
}

func (h *Handler) getStores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Stores(r.URL.Query().Get("category")))
}

func (h *Handler) searchStores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.SearchStores(r.URL.Query().Get("q")))
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	store, ok := h.Catalog.Store(id)
	if !ok {
		writeError(w, http.StatusNotFound, "store_not_found")
		return
	}
	writeJSON(w, http.StatusOK, store)
}

func (h *Handler) getStoreMenu(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	sections, ok := h.Catalog.StoreMenu(id)
	if !ok {
		writeError(w, http.StatusNotFound, "store_not_found")
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload service.OrderPayload
	decodeBody(r, &payload)

	result, err := h.Orders.Create(r.Context(), payload, r.Header.Get("Idempotency-Key"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPayload), errors.Is(err, service.ErrInvalidItems):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("[order-svc] create order failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]interface{}{
		"success":       true,
		"tracking_uuid": result.TrackingID,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.GetByTrackingID(r.Context(), mux.Vars(r)["uuid"])
	if errors.Is(err, service.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[order-svc] get order failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Orders.TrackingQRCode(r.Context(), mux.Vars(r)["uuid"])
	if errors.Is(err, service.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("[order-svc] qr code failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	decodeBody(r, &body)

	token, err := h.Auth.Login(body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Auth.Authorize(bearerToken(r)) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		log.Printf("[order-svc] list orders failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) adminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.Atoi(mux.Vars(r)["id"])
	var body struct {
		Status     domain.Status   `json:"status"`
		EtaMinutes *domain.FlexInt `json:"eta_minutes"`
	}
	decodeBody(r, &body)

	var etaMinutes *int
	if body.EtaMinutes != nil {
		minutes := body.EtaMinutes.Int()
		etaMinutes = &minutes
	}

	err := h.Orders.UpdateStatus(r.Context(), orderID, body.Status, etaMinutes)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidEta):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("[order-svc] update order %d failed: %v", orderID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	if h.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "stats_unavailable")
		return
	}
	day := r.URL.Query().Get("date")
	if day == "" {
		day = time.Now().UTC().Format(events.DayLayout)
	} else if _, err := time.Parse(events.DayLayout, day); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_date")
		return
	}

	stats, err := h.Stats.DailyStats(r.Context(), day)
	if err != nil {
		log.Printf("[order-svc] stats for %s failed: %v", day, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found")
}

func bearerToken(r *http.Request) string {
	m := bearerPattern.FindStringSubmatch(r.Header.Get("Authorization"))
	if m == nil {
		return ""
	}
	return m[1]
}

// decodeBody fills v from a JSON body. Malformed or missing bodies leave v
// at its zero value and fields of the wrong type are skipped.
func decodeBody(r *http.Request, v interface{}) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
