// Package server exposes roster ingestion and financing simulation as a JSON
// HTTP API for external presentation collaborators.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nmendoza-ar/credit-simulator/internal/ingest"
	"github.com/nmendoza-ar/credit-simulator/internal/simulation"
	"github.com/nmendoza-ar/credit-simulator/pkg/constants"
	"github.com/nmendoza-ar/credit-simulator/pkg/datetime"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	catalog       []simulation.CatalogEntry
	ingestor      *ingest.Ingestor
}

// NewHandler constructs the HTTP handler that serves the simulation API. The
// catalog is the default price list used when a request supplies none.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, catalog []simulation.CatalogEntry) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		catalog:       catalog,
		ingestor:      ingest.NewIngestor(logger),
	}

	mux := http.NewServeMux()

	// Roster upload: raw text rows in, counterparts out
	mux.HandleFunc("/api/roster", h.handleRoster)

	// Simulation endpoint for proposal computation
	mux.HandleFunc("/api/simulate", h.handleSimulate)

	// Configured price catalog
	mux.HandleFunc("/api/catalog", h.handleCatalog)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type rosterResponse struct {
	Counterparts []simulation.Counterpart `json:"counterparts"`
	Stats        ingest.Stats             `json:"stats"`
}

type counterpartPayload struct {
	Name          string          `json:"name"`
	TaxID         string          `json:"taxId"`
	AnnualBilling json.RawMessage `json:"annualBilling"`
}

type simulateRequest struct {
	Counterpart        counterpartPayload        `json:"counterpart"`
	Items              []simulation.CartItem     `json:"items"`
	DownPaymentPercent float64                   `json:"downPaymentPercent"`
	InterestRate       float64                   `json:"interestRate"`
	AnnualPayment      bool                      `json:"annualPayment"`
	Months             int                       `json:"months"`
	Catalog            []simulation.CatalogEntry `json:"catalog,omitempty"`
	ReferenceDate      string                    `json:"referenceDate,omitempty"`
}

type simulateResponse struct {
	Counterpart simulation.Counterpart      `json:"counterpart"`
	Result      simulation.SimulationResult `json:"result"`
	Duration    string                      `json:"duration"`
}

func (h *handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read roster: %v", err))
		return
	}

	counterparts, stats := h.ingestor.IngestStats(strings.Split(string(body), "\n"))

	h.logger.Info(fmt.Sprintf("ingested roster: %d rows, %d accepted, %d skipped",
		stats.Rows, stats.Accepted, stats.Skipped),
		zap.String("op", "server.handleRoster"),
	)

	h.writeJSON(w, http.StatusOK, rosterResponse{
		Counterparts: counterparts,
		Stats:        stats,
	})
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	billing, err := parseBillingPayload(req.Counterpart.AnnualBilling)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid annualBilling: %v", err))
		return
	}

	counterpart := simulation.NewCounterpart(req.Counterpart.Name, req.Counterpart.TaxID, billing)

	params := simulation.PlanParameters{
		Items:              req.Items,
		DownPaymentPercent: req.DownPaymentPercent,
		InterestRate:       req.InterestRate,
	}
	if req.AnnualPayment {
		params.Plan = simulation.BulletPlan{}
	} else {
		params.Plan = simulation.AmortizingPlan{Months: req.Months}
	}

	catalog := req.Catalog
	if len(catalog) == 0 {
		catalog = h.catalog
	}

	engine := simulation.NewEngine(h.logger)
	if req.ReferenceDate != "" {
		reference, err := time.Parse(datetime.DateTimeLayout, req.ReferenceDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid referenceDate: %v", err))
			return
		}
		engine = engine.WithScheduler(datetime.NewScheduler(reference))
	}

	result, err := engine.Simulate(counterpart, params, catalog)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidParameters) {
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("simulation failed: %v", err))
		return
	}

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Counterpart: counterpart,
		Result:      result,
		Duration:    time.Since(start).String(),
	})
}

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalog": h.catalog,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// parseBillingPayload accepts the billing amount either as a JSON number,
// used directly, or as a delimited string normalized by the ingest rules.
func parseBillingPayload(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value")
	}

	var numeric float64
	if err := json.Unmarshal(raw, &numeric); err == nil {
		return numeric, nil
	}

	var textual string
	if err := json.Unmarshal(raw, &textual); err != nil {
		return 0, fmt.Errorf("expected number or string")
	}
	return ingest.ParseBilling(textual)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.logger.Warn(msg,
		zap.String("op", "server.respondError"),
		zap.Int("status", status),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
