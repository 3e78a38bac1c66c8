package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bitesapp/bites/internal/domain/directory"
	"github.com/bitesapp/bites/internal/domain/weather"
	"github.com/bitesapp/bites/internal/infra/config"
)

const detailsBodyLimit = 64 << 10 // 64 KiB

// Handler wires the HTTP transport to the directory and weather services.
type Handler struct {
	directorySvc directory.Service
	weatherSvc   weather.Service
	pages        config.DirectoryConfig
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(directorySvc directory.Service, weatherSvc weather.Service, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		directorySvc: directorySvc,
		weatherSvc:   weatherSvc,
		pages:        cfg.Directory,
		logger:       logger.With("component", "http.handler"),
	}
}

type createRestaurantRequest struct {
	Name     string   `json:"name" binding:"required"`
	Location string   `json:"location" binding:"required"`
	Cuisines []string `json:"cuisines" binding:"required,min=1,dive,required"`
}

type addReviewRequest struct {
	Rating float64 `json:"rating" binding:"required,gte=1,lte=5"`
	Text   string  `json:"text"`
}

// ListRestaurants returns a rating-descending page of restaurant records.
func (h *Handler) ListRestaurants(c *gin.Context) {
	page, ok := h.parsePage(c)
	if !ok {
		return
	}
	records, err := h.directorySvc.List(c.Request.Context(), page)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusOK, records)
}

// CreateRestaurant registers a new restaurant with its cuisines.
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req createRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	created, err := h.directorySvc.Create(c.Request.Context(), directory.CreateRequest{
		Name:     req.Name,
		Location: req.Location,
		Cuisines: req.Cuisines,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusCreated, created)
}

// GetRestaurant returns the view-incremented record plus its cuisines.
func (h *Handler) GetRestaurant(c *gin.Context) {
	record, err := h.directorySvc.Get(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusOK, record)
}

// SetDetails stores the free-form details document verbatim.
func (h *Handler) SetDetails(c *gin.Context) {
	doc, err := io.ReadAll(io.LimitReader(c.Request.Body, detailsBodyLimit))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "read request body failed", err))
		return
	}
	if err := h.directorySvc.SetDetails(c.Request.Context(), c.Param("restaurantId"), doc); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respondMessage(c, http.StatusOK, "details saved")
}

// GetDetails returns the stored details document.
func (h *Handler) GetDetails(c *gin.Context) {
	doc, err := h.directorySvc.Details(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusOK, json.RawMessage(doc))
}

// GetWeather returns the cached or freshly fetched provider payload.
func (h *Handler) GetWeather(c *gin.Context) {
	payload, err := h.weatherSvc.ByRestaurant(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusOK, json.RawMessage(payload))
}

// AddReview appends a review and returns it with the updated restaurant.
func (h *Handler) AddReview(c *gin.Context) {
	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	review, restaurant, err := h.directorySvc.AddReview(c.Request.Context(), c.Param("restaurantId"), req.Rating, req.Text)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusCreated, gin.H{"review": review, "restaurant": restaurant})
}

// ListReviews returns a most-recent-first page of reviews.
func (h *Handler) ListReviews(c *gin.Context) {
	page, ok := h.parsePage(c)
	if !ok {
		return
	}
	reviews, err := h.directorySvc.ListReviews(c.Request.Context(), c.Param("restaurantId"), page)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusOK, reviews)
}

// DeleteReview removes a review from the ledger and its detail record.
func (h *Handler) DeleteReview(c *gin.Context) {
	err := h.directorySvc.DeleteReview(c.Request.Context(), c.Param("restaurantId"), c.Param("reviewId"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respondMessage(c, http.StatusOK, "review deleted")
}

// ListCuisines returns the global set of cuisine names.
func (h *Handler) ListCuisines(c *gin.Context) {
	cuisines, err := h.directorySvc.Cuisines(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusOK, cuisines)
}

// RestaurantsByCuisine returns the names of restaurants serving a cuisine.
func (h *Handler) RestaurantsByCuisine(c *gin.Context) {
	names, err := h.directorySvc.RestaurantNamesByCuisine(c.Request.Context(), c.Param("cuisine"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	respond(c, http.StatusOK, names)
}

func (h *Handler) parsePage(c *gin.Context) (directory.Page, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "page must be a positive integer", err))
		return directory.Page{}, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.pages.DefaultPageSize)))
	if err != nil || limit < 1 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a positive integer", err))
		return directory.Page{}, false
	}
	if limit > h.pages.MaxPageSize {
		limit = h.pages.MaxPageSize
	}
	return directory.Page{Page: page, Limit: limit}, true
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
