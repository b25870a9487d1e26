package reactive

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drblury/stateflow/internal/reactive/logging"
)

// BindingInfo describes one live binding for the inspector API.
type BindingInfo struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	Property    string    `json:"property"`
	Path        string    `json:"path"`
	Target      string    `json:"target"`
	ReverseEdit bool      `json:"reverse_edit"`
	BoundAt     time.Time `json:"bound_at"`
}

// PropertyInfo summarizes the observers registered on one property.
type PropertyInfo struct {
	Name     string `json:"name"`
	Watchers int    `json:"watchers"`
	Bindings int    `json:"bindings"`
}

// StateInfo summarizes one state the binder has touched.
type StateInfo struct {
	Name       string         `json:"name"`
	Properties []PropertyInfo `json:"properties"`
}

// BindingInfos returns a sorted snapshot of the live binding records.
func (b *Binder) BindingInfos() []BindingInfo {
	b.mu.Lock()
	records := make([]*bindingRecord, 0, len(b.records))
	for _, rec := range b.records {
		records = append(records, rec)
	}
	b.mu.Unlock()

	infos := make([]BindingInfo, 0, len(records))
	for _, rec := range records {
		info := BindingInfo{
			ID:          rec.id,
			Path:        rec.path,
			Target:      targetKind(rec.target),
			ReverseEdit: rec.detach != nil,
			BoundAt:     rec.boundAt,
		}
		if rec.owner != nil {
			info.State = rec.owner.name
			info.Property = rec.leaf
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// StateInfos returns a sorted snapshot of every state the binder knows,
// with per-property watcher and binding counts. Counts come from the
// binder's own books, so the snapshot is safe to take while writes run.
func (b *Binder) StateInfos() []StateInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	perState := make(map[*State]map[string]*PropertyInfo, len(b.states))
	ensure := func(s *State, property string) *PropertyInfo {
		props, ok := perState[s]
		if !ok {
			props = make(map[string]*PropertyInfo)
			perState[s] = props
		}
		info, ok := props[property]
		if !ok {
			info = &PropertyInfo{Name: property}
			props[property] = info
		}
		return info
	}

	for s := range b.states {
		if _, ok := perState[s]; !ok {
			perState[s] = make(map[string]*PropertyInfo)
		}
	}
	for s, counts := range b.watcherCounts {
		for property, n := range counts {
			ensure(s, property).Watchers = n
		}
	}
	for _, rec := range b.records {
		if rec.owner != nil {
			ensure(rec.owner, rec.leaf).Bindings++
		}
	}

	infos := make([]StateInfo, 0, len(perState))
	for s, props := range perState {
		info := StateInfo{Name: s.name, Properties: make([]PropertyInfo, 0, len(props))}
		for _, p := range props {
			info.Properties = append(info.Properties, *p)
		}
		sort.Slice(info.Properties, func(i, j int) bool {
			return info.Properties[i].Name < info.Properties[j].Name
		})
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// StartInspector registers the inspector API and the Prometheus endpoint
// according to the config and starts the HTTP servers backing them. It
// returns immediately; the servers run on their own goroutines.
func (b *Binder) StartInspector() {
	if b.conf.InspectorEnabled {
		port := b.conf.InspectorPort
		if port == 0 {
			port = 8081
		}
		b.RegisterHTTPHandler(port, "/api/bindings", http.HandlerFunc(b.handleGetBindings))
		b.RegisterHTTPHandler(port, "/api/states", http.HandlerFunc(b.handleGetStates))
	}

	if b.conf.MetricsEnabled && b.conf.MetricsPort > 0 {
		b.RegisterHTTPHandler(b.conf.MetricsPort, "/metrics", promhttp.Handler())
	}

	b.startHTTPServers()
}

func (b *Binder) handleGetBindings(w http.ResponseWriter, r *http.Request) {
	if done := b.writeInspectorHeaders(w, r); done {
		return
	}

	if err := json.NewEncoder(w).Encode(b.BindingInfos()); err != nil {
		b.log.Error("Failed to encode bindings", err, nil)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (b *Binder) handleGetStates(w http.ResponseWriter, r *http.Request) {
	if done := b.writeInspectorHeaders(w, r); done {
		return
	}

	if err := json.NewEncoder(w).Encode(b.StateInfos()); err != nil {
		b.log.Error("Failed to encode states", err, nil)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// writeInspectorHeaders sets the shared response headers and handles CORS
// preflight. It reports true when the request is fully answered.
func (b *Binder) writeInspectorHeaders(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Content-Type", "application/json")

	if b.conf != nil && len(b.conf.InspectorCORSAllowedOrigins) > 0 {
		origin := r.Header.Get("Origin")
		allowedOrigin := b.getAllowedCORSOrigin(origin)
		if allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// getAllowedCORSOrigin checks if the request origin is allowed and returns the
// appropriate Access-Control-Allow-Origin value.
func (b *Binder) getAllowedCORSOrigin(requestOrigin string) string {
	if b.conf == nil {
		return ""
	}
	for _, allowed := range b.conf.InspectorCORSAllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, requestOrigin) {
			return requestOrigin
		}
	}
	return ""
}

func (b *Binder) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	b.httpServersMu.Lock()
	defer b.httpServersMu.Unlock()

	if b.httpServers == nil {
		b.httpServers = make(map[int]*http.ServeMux)
	}

	mux, ok := b.httpServers[port]
	if !ok {
		mux = http.NewServeMux()
		b.httpServers[port] = mux
	}

	mux.Handle(pattern, handler)
}

func (b *Binder) startHTTPServers() {
	b.httpServersMu.Lock()
	defer b.httpServersMu.Unlock()

	for port, mux := range b.httpServers {
		addr := fmt.Sprintf(":%d", port)
		b.log.Info("Starting HTTP server", logging.LogFields{"address": addr})
		go func(addr string, handler http.Handler) {
			if err := http.ListenAndServe(addr, handler); err != nil {
				b.log.Error("Failed to start HTTP server", err, logging.LogFields{"address": addr})
			}
		}(addr, mux)
	}
}
