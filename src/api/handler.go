// Package api exposes the scanner over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
	"github.com/jiaming2012/spread-scanner/src/scanner"
)

var (
	scanService  *scanner.Scanner
	queryDecoder = schema.NewDecoder()
)

type errorDTO struct {
	Msg string `json:"msg"`
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(errorDTO{Msg: err.Error()}); encodeErr != nil {
		log.Errorf("writeError: failed to encode response: %v", encodeErr)
	}
}

func writeJSON(w http.ResponseWriter, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("writeJSON: failed to encode response: %v", err)
	}
}

func decodeFilters(r *http.Request) (models.ScanFilters, error) {
	filters := models.DefaultScanFilters()

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
			return filters, err
		}
	case http.MethodGet:
		if err := r.ParseForm(); err != nil {
			return filters, err
		}

		if err := queryDecoder.Decode(&filters, r.Form); err != nil {
			return filters, err
		}
	}

	return filters, nil
}

func scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	filters, err := decodeFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := filters.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := scanService.Scan(r.Context(), filters)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, result)
}

func SetupHandler(router *mux.Router, svc *scanner.Scanner) {
	scanService = svc
	queryDecoder.IgnoreUnknownKeys(true)

	router.HandleFunc("/scan", scanHandler)
}
