package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"gradecast/db"
	"gradecast/ml"
	"gradecast/monitoring"
	"gradecast/predict"
)

// PredictorService is the prediction surface the handlers depend on; the
// concrete predictor satisfies it, tests substitute fakes.
type PredictorService interface {
	Predict(in predict.UserInput) (*predict.Session, error)
	ExplainLocal(s *predict.Session) ([]ml.Attribution, error)
	ExplainGlobal() []ml.Importance
	BaseValue() float64
}

var (
	serviceMu sync.RWMutex
	predictor PredictorService
	hub       *monitoring.Hub
	topN      = 10

	sessions = &predict.SessionHolder{}
)

// SetPredictor installs the prediction service.
func SetPredictor(p PredictorService) {
	serviceMu.Lock()
	predictor = p
	serviceMu.Unlock()
}

// SetMonitorHub installs the websocket event hub.
func SetMonitorHub(h *monitoring.Hub) {
	serviceMu.Lock()
	hub = h
	serviceMu.Unlock()
}

// SetTopN sets how many chart entries the explanation endpoints return.
func SetTopN(n int) {
	if n <= 0 {
		return
	}
	serviceMu.Lock()
	topN = n
	serviceMu.Unlock()
}

func getPredictor() PredictorService {
	serviceMu.RLock()
	defer serviceMu.RUnlock()
	return predictor
}

func getHub() *monitoring.Hub {
	serviceMu.RLock()
	defer serviceMu.RUnlock()
	return hub
}

func getTopN() int {
	serviceMu.RLock()
	defer serviceMu.RUnlock()
	return topN
}

// RegisterHandlers wires the JSON API routes.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/explain/local", handleExplainLocal)
	mux.HandleFunc("GET /api/explain/global", handleExplainGlobal)
	mux.HandleFunc("GET /api/ws/monitor", handleMonitorWS)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":       "ok",
		"model_loaded": getPredictor() != nil,
	}
	if run, err := db.LatestTrainingRun(); err == nil {
		response["last_training"] = run
	}
	writeJSON(w, http.StatusOK, response)
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	service := getPredictor()
	if service == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	var input predict.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := service.Predict(input)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sessions.Set(session)
	if h := getHub(); h != nil {
		h.PublishPrediction(monitoring.PredictionEvent{
			SessionID: session.ID,
			School:    session.Input.School,
			Grade:     session.Grade,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": session.ID,
		"grade":      session.Grade,
		"created_at": session.CreatedAt.Format(time.RFC3339),
	})
}

func handleExplainLocal(w http.ResponseWriter, r *http.Request) {
	service := getPredictor()
	if service == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	session := sessions.Current()
	if session == nil {
		writeError(w, http.StatusNotFound, "no prediction to explain yet")
		return
	}

	attrs, err := service.ExplainLocal(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":   session.ID,
		"grade":        session.Grade,
		"base_value":   service.BaseValue(),
		"attributions": ml.TopAttributions(attrs, limitParam(r)),
	})
}

func handleExplainGlobal(w http.ResponseWriter, r *http.Request) {
	service := getPredictor()
	if service == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"importances": ml.TopImportances(service.ExplainGlobal(), limitParam(r)),
	})
}

func handleMonitorWS(w http.ResponseWriter, r *http.Request) {
	h := getHub()
	if h == nil {
		writeError(w, http.StatusServiceUnavailable, "monitoring disabled")
		return
	}
	h.ServeWS(w, r)
}

func limitParam(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return getTopN()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
