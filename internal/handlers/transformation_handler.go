package handlers

import (
	"net/http"

	"github.com/imaginify/backend/internal/models"
	"github.com/imaginify/backend/internal/services"
)

// TransformationTypes lists the available transformations
// @Summary Transformation catalogue
// @Tags Transformations
// @Produce json
// @Success 200 {object} map[string]models.Transformation
// @Router /transformations/types [get]
func TransformationTypes(w http.ResponseWriter, r *http.Request) {
	services.WriteJSON(w, http.StatusOK, models.Transformations())
}

// AuthStatus reports that the auth routes are up
// @Summary Auth status
// @Tags Auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/status [get]
func AuthStatus(w http.ResponseWriter, r *http.Request) {
	services.WriteJSON(w, http.StatusOK, map[string]string{"message": "Auth service is running"})
}
