package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"page-server/internal/page"
	"page-server/internal/state"
	"page-server/internal/types"
	"page-server/web"
)

// HomeHandler serves the embedded page exactly as authored
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		sendError(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(web.IndexHTML); err != nil {
		logrus.WithError(err).Warn("Failed to write page")
	}
}

// PageInfoHandler returns the structure of the served page
func PageInfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info, err := state.GetPageInfo()
	if err != nil {
		logrus.WithError(err).Error("Page info unavailable")
		sendError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// VerifyHandler checks the served page against its structural invariants
func VerifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	markup, err := state.GetMarkup()
	if err != nil {
		logrus.WithError(err).Error("Page markup unavailable")
		sendError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if err := page.Verify(markup); err != nil {
		logrus.WithError(err).Error("Page verification failed")
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, "page verified")
}

// HealthHandler reports liveness
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, "ok")
}

// sendError sends an error response
func sendError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, types.Response{
		Success: false,
		Message: message,
	})
}

// sendSuccess sends a success response
func sendSuccess(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, types.Response{
		Success: true,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}
