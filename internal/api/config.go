package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"glidecore/pkg/config"
	"glidecore/pkg/olc"
	"glidecore/pkg/store"
)

// Accepted handicap range; club class indices sit well inside it.
const (
	minHandicap = 50
	maxHandicap = 200
)

// ConfigHandler handles runtime-changeable settings.
type ConfigHandler struct {
	store   store.StateStore
	cfgProv config.Provider
}

// ConfigResponse is the current runtime configuration.
type ConfigResponse struct {
	Rules         string  `json:"rules"`
	Handicap      float64 `json:"handicap"`
	SimSource     string  `json:"sim_source"`
	ResumeEnabled bool    `json:"resume_enabled"`
}

// ConfigRequest carries the fields to change. Omitted fields stay as they are.
type ConfigRequest struct {
	Rules         string   `json:"rules,omitempty"`
	Handicap      *float64 `json:"handicap,omitempty"`
	SimSource     string   `json:"sim_source,omitempty"`
	ResumeEnabled *bool    `json:"resume_enabled,omitempty"`
}

func NewConfigHandler(st store.StateStore, cfgProv config.Provider) *ConfigHandler {
	return &ConfigHandler{store: st, cfgProv: cfgProv}
}

// HandleConfig is a unified handler for all config-related methods, facilitating CORS/OPTIONS.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.HandleGetConfig(w, r)
	case http.MethodPut, http.MethodPost:
		h.HandleSetConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleGetConfig returns the current configuration.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.getConfigResponse(r.Context())); err != nil {
		slog.Error("Failed to encode config response", "error", err)
	}
}

func (h *ConfigHandler) getConfigResponse(ctx context.Context) ConfigResponse {
	return ConfigResponse{
		Rules:         h.cfgProv.Rules(ctx),
		Handicap:      h.cfgProv.Handicap(ctx),
		SimSource:     h.cfgProv.SimProvider(ctx),
		ResumeEnabled: h.cfgProv.ResumeEnabled(ctx),
	}
}

// HandleSetConfig validates and stores the changes. The contest job picks
// up rules and handicap on its next run.
func (h *ConfigHandler) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.Body.Close() }()

	var req ConfigRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	updates, err := validate(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	for key, val := range updates {
		if err := h.store.SetState(ctx, key, val); err != nil {
			slog.Error("Failed to save setting", "key", key, "error", err)
			http.Error(w, "Failed to save setting", http.StatusInternalServerError)
			return
		}
		slog.Info("Setting changed", "key", key, "value", val)
	}

	h.HandleGetConfig(w, r)
}

var simSources = map[string]bool{"mock": true}

func validate(req *ConfigRequest) (map[string]string, error) {
	updates := make(map[string]string)
	if req.Rules != "" {
		rules, err := olc.ParseRules(req.Rules)
		if err != nil {
			return nil, err
		}
		updates[config.KeyOLCRules] = rules.String()
	}
	if req.Handicap != nil {
		v := *req.Handicap
		if v < minHandicap || v > maxHandicap {
			return nil, fmt.Errorf("handicap %v outside %d..%d", v, minHandicap, maxHandicap)
		}
		updates[config.KeyHandicap] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if req.SimSource != "" {
		if !simSources[req.SimSource] {
			return nil, fmt.Errorf("unknown sim source %q", req.SimSource)
		}
		updates[config.KeySimSource] = req.SimSource
	}
	if req.ResumeEnabled != nil {
		updates[config.KeyResumeEnabled] = strconv.FormatBool(*req.ResumeEnabled)
	}
	return updates, nil
}
