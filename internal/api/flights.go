package api

import (
	"errors"
	"net/http"
	"strconv"

	"glidecore/pkg/store"
)

const (
	defaultFlightLimit = 20
	maxFlightLimit     = 200
)

// FlightArchive is the store surface behind /api/flights.
type FlightArchive interface {
	store.FlightStore
	store.SourceStore
}

type FlightsHandler struct {
	store  FlightArchive
	active func() string
}

// NewFlightsHandler serves stored flights. active reports the id of the
// flight in progress, which cannot be deleted.
func NewFlightsHandler(st FlightArchive, active func() string) *FlightsHandler {
	return &FlightsHandler{store: st, active: active}
}

func (h *FlightsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultFlightLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxFlightLimit)
	}
	flights, err := h.store.ListFlights(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if flights == nil {
		flights = []store.Flight{}
	}
	writeJSON(w, flights)
}

func (h *FlightsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.store.GetFlight(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, f)
}

func (h *FlightsHandler) HandleSources(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.GetFlight(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	src, err := h.store.GetSources(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if src == nil {
		src = []store.Source{}
	}
	writeJSON(w, src)
}

func (h *FlightsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if h.active != nil && id == h.active() {
		http.Error(w, "flight in progress", http.StatusConflict)
		return
	}
	if err := h.store.DeleteFlight(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
