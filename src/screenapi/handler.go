package screenapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/eventservices"
)

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

type ScreenResponse struct {
	Symbol     string                      `json:"symbol"`
	Period     string                      `json:"period"`
	Version    string                      `json:"version"`
	Count      int                         `json:"count"`
	Candidates []*eventmodels.CandidateDTO `json:"candidates"`
}

type PresetsResponse struct {
	Presets []string `json:"presets"`
}

// Handler serves screening over datasets saved by the aggregate command.
type Handler struct {
	DataDir  string
	Presets  *eventmodels.ScreenPresetsConfigYAML
	screener *eventservices.Screener
	validate *validator.Validate
	decoder  *schema.Decoder
}

func NewHandler(dataDir string, presets *eventmodels.ScreenPresetsConfigYAML) *Handler {
	if presets == nil {
		presets = &eventmodels.ScreenPresetsConfigYAML{}
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)

	return &Handler{
		DataDir:  dataDir,
		Presets:  presets,
		screener: eventservices.NewScreener(),
		validate: validator.New(),
		decoder:  decoder,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.Handle("/screen", otelhttp.WithRouteTag("/screen", http.HandlerFunc(h.getScreen))).Methods(http.MethodGet)
	router.Handle("/presets", otelhttp.WithRouteTag("/presets", http.HandlerFunc(h.getPresets))).Methods(http.MethodGet)
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(&errorResponse{Type: errType, Msg: err.Error()}); encodeErr != nil {
		log.Errorf("setErrorResponse: encode: %v", encodeErr)
	}
}

func (h *Handler) getPresets(w http.ResponseWriter, r *http.Request) {
	if err := setResponse(&PresetsResponse{Presets: h.Presets.Names()}, w); err != nil {
		log.Errorf("getPresets: %v", err)
	}
}

func (h *Handler) getScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScreenRequestDTO
	if err := h.decoder.Decode(&req, r.URL.Query()); err != nil {
		setErrorResponse("invalid_request", http.StatusBadRequest, err, w)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		setErrorResponse("invalid_request", http.StatusBadRequest, err, w)
		return
	}

	period, err := req.Period()
	if err != nil {
		setErrorResponse("invalid_request", http.StatusBadRequest, err, w)
		return
	}

	base := eventmodels.ScreenCriteria{}
	if req.Preset != "" {
		preset, err := h.Presets.GetPreset(req.Preset)
		if err != nil {
			setErrorResponse("preset_not_found", http.StatusNotFound, err, w)
			return
		}

		if base, err = preset.ToCriteria(); err != nil {
			setErrorResponse("invalid_criteria", http.StatusBadRequest, err, w)
			return
		}
	}

	criteria, err := req.ToCriteria(base)
	if err != nil {
		setErrorResponse("invalid_criteria", http.StatusBadRequest, err, w)
		return
	}

	dataset, err := eventservices.LoadLatestDataset(h.DataDir, req.NormalizedSymbol(), period)
	if err != nil {
		if errors.Is(err, eventmodels.ErrDatasetNotFound) {
			setErrorResponse("dataset_not_found", http.StatusNotFound, err, w)
			return
		}

		log.WithContext(ctx).Errorf("getScreen: %v", err)
		setErrorResponse("internal_error", http.StatusInternalServerError, err, w)
		return
	}

	candidates, err := h.screener.Screen(ctx, dataset, criteria)
	if err != nil {
		setErrorResponse("invalid_criteria", http.StatusBadRequest, err, w)
		return
	}

	resp := &ScreenResponse{
		Symbol:     dataset.Symbol,
		Period:     dataset.Period.String(),
		Version:    dataset.Version.String(),
		Count:      len(candidates),
		Candidates: make([]*eventmodels.CandidateDTO, 0, len(candidates)),
	}

	for i := range candidates {
		resp.Candidates = append(resp.Candidates, candidates[i].ToDTO())
	}

	if err := setResponse(resp, w); err != nil {
		log.WithContext(ctx).Errorf("getScreen: %v", err)
	}
}
