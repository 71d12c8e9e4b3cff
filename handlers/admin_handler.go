// handlers/admin_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Gustavo2020/GestUnifServ/catalog"
	"github.com/Gustavo2020/GestUnifServ/models"
)

// ReloadCatalogHandler handles POST /api/admin/reload-catalog: re-reads the
// risk CSV and swaps the in-memory index.
func ReloadCatalogHandler(cat *catalog.RiskCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
			return
		}

		if err := cat.Reload(); err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to reload risk catalog: %v", err))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":        "Risk catalog reloaded successfully.",
			"municipalities": cat.Size(),
		})
	}
}

// DriversHandler handles the driver registry:
//   - GET  /api/drivers?national_id=...  (one driver, or all when omitted)
//   - POST /api/drivers                  (upsert one driver)
func DriversHandler(drivers *catalog.DriverCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			nationalID := r.URL.Query().Get("national_id")
			if nationalID == "" {
				respondWithJSON(w, http.StatusOK, drivers.All())
				return
			}
			driver, ok := drivers.Get(nationalID)
			if !ok {
				respondWithError(w, http.StatusNotFound, fmt.Sprintf("Driver %s not found", nationalID))
				return
			}
			respondWithJSON(w, http.StatusOK, driver)

		case http.MethodPost:
			var driver models.Driver
			if err := json.NewDecoder(r.Body).Decode(&driver); err != nil {
				respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
				return
			}
			defer r.Body.Close()

			if driver.NationalID == "" {
				respondWithError(w, http.StatusBadRequest, "Missing 'driver_national_id' in request body")
				return
			}
			if err := drivers.Upsert(driver); err != nil {
				respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save driver: %v", err))
				return
			}
			log.Printf("Handler: upserted driver %s\n", driver.NationalID)
			respondWithJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Driver %s saved successfully.", driver.NationalID)})

		default:
			respondWithError(w, http.StatusMethodNotAllowed, "Only GET and POST methods are allowed")
		}
	}
}
