package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mW "github.com/imaginify/backend/internal/middleware"
	"github.com/imaginify/backend/internal/models"
	"github.com/imaginify/backend/internal/services"
)

// ImageStore is the gallery service as seen by the image routes.
type ImageStore interface {
	AddImage(ctx context.Context, authorID string, image models.Image, creditFee int) (*models.Image, *models.User, error)
	GetImage(ctx context.Context, imageID string) (*models.Image, error)
	UpdateImage(ctx context.Context, userID, imageID string, image models.Image) (*models.Image, error)
	DeleteImage(ctx context.Context, userID, imageID string) error
	ListImages(ctx context.Context, searchQuery string, page int) (*models.ImagePage, error)
	ListUserImages(ctx context.Context, authorID string, page int) (*models.ImagePage, error)
}

// AddImageRequest is an image record plus the fee to charge for it.
type AddImageRequest struct {
	models.Image
	CreditFee *int `json:"creditFee,omitempty"`
}

// AddImageResponse returns the saved image and the author's new balance.
type AddImageResponse struct {
	Image         *models.Image `json:"image"`
	CreditBalance int           `json:"creditBalance"`
}

type ImageHandler struct {
	images ImageStore
}

func NewImageHandler(images ImageStore) *ImageHandler {
	return &ImageHandler{images: images}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ListImages returns one gallery page
// @Summary List images
// @Tags Images
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param searchQuery query string false "Search text"
// @Success 200 {object} models.ImagePage
// @Router /images [get]
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	page, err := h.images.ListImages(r.Context(), r.URL.Query().Get("searchQuery"), pageParam(r))
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, page)
}

// ListUserImages returns one page of a user's images
// @Summary List a user's images
// @Tags Images
// @Produce json
// @Param userId path string true "Author subject id"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} models.ImagePage
// @Router /images/user/{userId} [get]
func (h *ImageHandler) ListUserImages(w http.ResponseWriter, r *http.Request) {
	page, err := h.images.ListUserImages(r.Context(), chi.URLParam(r, "userId"), pageParam(r))
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, page)
}

// GetImage returns one image
// @Summary Get image
// @Tags Images
// @Produce json
// @Param imageId path string true "Image id"
// @Success 200 {object} models.Image
// @Failure 404 {object} services.ErrorResponse
// @Router /images/{imageId} [get]
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.images.GetImage(r.Context(), chi.URLParam(r, "imageId"))
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, image)
}

// AddImage saves a transformed image and charges its credit fee
// @Summary Add image
// @Tags Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.AddImageRequest true "Image record"
// @Success 201 {object} handlers.AddImageResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /images [post]
func (h *ImageHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := mW.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req AddImageRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendAppError(w, err)
		return
	}
	fee := models.TransformationCreditFee
	if req.CreditFee != nil {
		fee = *req.CreditFee
	}

	image, user, err := h.images.AddImage(r.Context(), userID, req.Image, fee)
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusCreated, AddImageResponse{Image: image, CreditBalance: user.CreditBalance})
}

// UpdateImage overwrites an image the caller wrote
// @Summary Update image
// @Tags Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param imageId path string true "Image id"
// @Param request body models.Image true "Image record"
// @Success 200 {object} models.Image
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /images/{imageId} [put]
func (h *ImageHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := mW.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var image models.Image
	if err := services.DecodeJSON(w, r, &image); err != nil {
		services.SendAppError(w, err)
		return
	}

	updated, err := h.images.UpdateImage(r.Context(), userID, chi.URLParam(r, "imageId"), image)
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, updated)
}

// DeleteImage removes an image the caller wrote
// @Summary Delete image
// @Tags Images
// @Produce json
// @Security BearerAuth
// @Param imageId path string true "Image id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /images/{imageId} [delete]
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := mW.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	if err := h.images.DeleteImage(r.Context(), userID, chi.URLParam(r, "imageId")); err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}
