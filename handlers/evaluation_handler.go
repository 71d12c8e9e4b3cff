// handlers/evaluation_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Gustavo2020/GestUnifServ/models"
	"github.com/Gustavo2020/GestUnifServ/services"
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondEvaluation maps an evaluation outcome to a response. A partial
// persistence failure still carries the record so the client can retry the
// failed sink with the same ruta_id.
func respondEvaluation(w http.ResponseWriter, record *models.RouteRecord, err error) {
	if err == nil {
		respondWithJSON(w, http.StatusOK, record)
		return
	}

	var partial *services.PartialPersistenceError
	switch {
	case errors.As(err, &partial):
		respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":       "partial persistence",
			"ruta_id":     partial.RutaID,
			"failed_sink": partial.FailedSink,
			"detail":      partial.Err.Error(),
			"record":      record,
		})
	case errors.Is(err, services.ErrInvalidQuery), errors.Is(err, services.ErrUnknownMunicipality):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Evaluation failed: %v", err))
	}
}

// EvaluateHandler handles POST /api/evaluate: the legacy flat city list.
func EvaluateHandler(svc *services.EvaluationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
			return
		}

		var req models.EvaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		defer r.Body.Close()

		if req.UserID == "" {
			respondWithError(w, http.StatusBadRequest, "Missing 'user_id' in request body")
			return
		}

		log.Printf("Handler: received evaluate request from %s (%d cities)\n", req.UserID, len(req.Cities))
		record, err := svc.EvaluateCities(req, r.Header.Get("X-Request-ID"))
		respondEvaluation(w, record, err)
	}
}

// EvaluateDayHandler handles POST /api/evaluate_day: one user, one planned
// date, all segments of that day.
func EvaluateDayHandler(svc *services.EvaluationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
			return
		}

		var req models.EvaluateDayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		defer r.Body.Close()

		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Printf("Handler: received evaluate_day request from %s for %s (%d segments)\n",
			req.User.UserID, req.Date, len(req.Segments))
		record, err := svc.EvaluateDay(req, r.Header.Get("X-Request-ID"))
		respondEvaluation(w, record, err)
	}
}
