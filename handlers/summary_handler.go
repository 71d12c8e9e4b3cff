// handlers/summary_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/Gustavo2020/GestUnifServ/catalog"
	"github.com/Gustavo2020/GestUnifServ/models"
	"github.com/Gustavo2020/GestUnifServ/services"
)

// WeekSummaryHandler handles GET /api/week_summary?week_start=YYYY-MM-DD&source=json|db[&user_id=...].
func WeekSummaryHandler(svc *services.SummaryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
			return
		}

		query := r.URL.Query()
		weekStart := query.Get("week_start")
		source := query.Get("source")
		userID := query.Get("user_id")

		if weekStart == "" {
			respondWithError(w, http.StatusBadRequest, "Missing 'week_start' query parameter")
			return
		}
		if source == "" {
			source = models.SourceJSON
		}

		log.Printf("Handler: received week_summary request week_start=%s source=%s user_id=%q\n", weekStart, source, userID)

		view, err := svc.SummarizeWeek(weekStart, userID, source)
		if err != nil {
			if errors.Is(err, services.ErrInvalidQuery) {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to build weekly summary: %v", err))
			return
		}
		respondWithJSON(w, http.StatusOK, view)
	}
}

// SuggestMunicipiosHandler handles GET /api/municipios/suggest?q=...[&departamento=...][&pais=...][&limit=N].
// No matches yields an empty list, not an error.
func SuggestMunicipiosHandler(cat *catalog.RiskCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
			return
		}

		query := r.URL.Query()
		q := query.Get("q")
		limit := 10
		if raw := query.Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				respondWithError(w, http.StatusBadRequest, "Invalid 'limit' query parameter")
				return
			}
			if parsed > 50 {
				parsed = 50
			}
			limit = parsed
		}

		filters := catalog.SuggestFilters{
			Departamento: query.Get("departamento"),
			Pais:         query.Get("pais"),
		}
		suggestions := cat.Suggest(q, filters, limit)
		if suggestions == nil {
			suggestions = []models.RiskEntry{}
		}
		respondWithJSON(w, http.StatusOK, suggestions)
	}
}
