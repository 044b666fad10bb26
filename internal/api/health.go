package api

import (
	"net/http"

	"github.com/Krupsinko/Bookmark/docs/swagger"
)

// healthy reports liveness.
//
// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /healthy [get]
func healthy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "Healthy"})
}

// docJSON serves the OpenAPI document.
func docJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(swagger.SwaggerInfo.ReadDoc()))
}
