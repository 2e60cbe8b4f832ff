package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bnema/lobbymatch/internal/application"
	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/google/uuid"
)

const (
	statusError = "error"
	statusOK    = "ok"

	requestIDHeader = "X-Request-Id"
	maxBodyBytes    = 1 << 16
)

// Engine is the matchmaking core driven by the gateway.
type Engine interface {
	ReportSession(station domain.Station, sessionID domain.SessionID) (domain.Verdict, error)
	CompleteSession(station domain.Station) (domain.Verdict, error)
	Reset()
	Snapshot() domain.StatusView
	Stats() application.EngineStats
}

type Handler struct {
	engine Engine
	logger *slog.Logger
	mux    *http.ServeMux
}

type lobbyRequest struct {
	Station   string  `json:"pc"`
	SessionID *string `json:"lobby_id"`
}

type gameEndRequest struct {
	Station string `json:"pc"`
}

// response is the wire envelope stations understand. A nil Status encodes
// as JSON null and means "still waiting".
type response struct {
	Status  *string `json:"status"`
	Message string  `json:"message,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	application.EngineStats
}

func NewHandler(engine Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &Handler{engine: engine, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /lobby_id", h.handleLobbyID)
	h.mux.HandleFunc("POST /game_end", h.handleGameEnd)
	h.mux.HandleFunc("POST /reset", h.handleReset)
	h.mux.HandleFunc("GET /status", h.handleStatusPage)
	h.mux.HandleFunc("GET /status.json", h.handleStatusJSON)
	h.mux.HandleFunc("GET /healthz", h.handleHealth)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)

	h.logger.Debug("request",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID,
	)
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleLobbyID(w http.ResponseWriter, r *http.Request) {
	var req lobbyRequest
	if !h.decode(w, r, &req) {
		return
	}

	station, err := domain.ParseStation(req.Station)
	if err != nil {
		h.writeUnknownStation(w, r, err)
		return
	}

	var sessionID domain.SessionID
	if req.SessionID != nil {
		sessionID = domain.SessionID(*req.SessionID)
	}

	verdict, err := h.engine.ReportSession(station, sessionID)
	if err != nil {
		h.writeUnknownStation(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, response{Status: verdictStatus(verdict)})
}

func (h *Handler) handleGameEnd(w http.ResponseWriter, r *http.Request) {
	var req gameEndRequest
	if !h.decode(w, r, &req) {
		return
	}

	station, err := domain.ParseStation(req.Station)
	if err != nil {
		h.writeUnknownStation(w, r, err)
		return
	}

	if _, err := h.engine.CompleteSession(station); err != nil {
		h.writeUnknownStation(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, response{Status: stringPtr(statusOK)})
}

func (h *Handler) handleReset(w http.ResponseWriter, _ *http.Request) {
	h.engine.Reset()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

func (h *Handler) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	page, err := RenderStatusPage(h.engine.Snapshot())
	if err != nil {
		h.logger.Warn("render status page", "error", err, "request_id", w.Header().Get(requestIDHeader))
		http.Error(w, "render status page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (h *Handler) handleStatusJSON(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, NewStatusPayload(h.engine.Snapshot()))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, healthResponse{Status: statusOK, EngineStats: h.engine.Stats()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		h.logger.Warn("decode request body",
			"path", r.URL.Path,
			"error", err,
			"request_id", w.Header().Get(requestIDHeader),
		)
		jsonResponse(w, http.StatusBadRequest, response{
			Status:  stringPtr(statusError),
			Message: "invalid JSON body",
		})
		return false
	}
	return true
}

func (h *Handler) writeUnknownStation(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("rejected request",
		"path", r.URL.Path,
		"error", err,
		"request_id", w.Header().Get(requestIDHeader),
	)

	message := err.Error()
	if errors.Is(err, domain.ErrUnknownStation) {
		message = "Unknown PC name"
	}

	jsonResponse(w, http.StatusOK, response{Status: stringPtr(statusError), Message: message})
}

// verdictStatus maps an engine verdict onto the station vocabulary.
func verdictStatus(verdict domain.Verdict) *string {
	switch verdict {
	case domain.VerdictAccepted, domain.VerdictSearchAgain:
		return stringPtr(string(verdict))
	case domain.VerdictOK:
		return stringPtr(statusOK)
	default:
		return nil
	}
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func stringPtr(value string) *string {
	return &value
}
