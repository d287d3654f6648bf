package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmun/delegation-api/internal/domain/community"
	"github.com/openmun/delegation-api/internal/response"
	"github.com/openmun/delegation-api/internal/storage/objectstore"
	"github.com/openmun/delegation-api/internal/storage/postgres"
	"github.com/openmun/delegation-api/internal/validation"
)

// CommunityHandler serves the community catalogue, the admin roster view,
// and logo uploads.
type CommunityHandler struct {
	communityRepo postgres.CommunityRepository
	personRepo    postgres.PersonRepository
	logos         *objectstore.Store
	validator     validation.CommunityValidation
}

func NewCommunityHandler(communityRepo postgres.CommunityRepository, personRepo postgres.PersonRepository, logos *objectstore.Store) *CommunityHandler {
	return &CommunityHandler{
		communityRepo: communityRepo,
		personRepo:    personRepo,
		logos:         logos,
	}
}

type communitySummary struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	LogoURL            string   `json:"logo_url"`
	OccupiedSeats      int      `json:"occupied_seats"`
	SeatCapacity       int      `json:"seat_capacity"`
	AvailableCountries []string `json:"available_countries"`
}

// List handles GET /api/communities
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.communityRepo.GetAll()
	if err != nil {
		response.InternalServerError(c, "Failed to load communities")
		return
	}

	summaries := make([]communitySummary, 0, len(communities))
	for _, comm := range communities {
		summaries = append(summaries, communitySummary{
			ID:                 comm.ID.String(),
			Name:               comm.Name,
			LogoURL:            comm.LogoURL,
			OccupiedSeats:      comm.OccupiedSeats,
			SeatCapacity:       comm.SeatCapacity,
			AvailableCountries: comm.AvailableCountries(),
		})
	}

	response.SuccessResponse(c, http.StatusOK, "", summaries)
}

// Get handles GET /api/communities/:id. The countries map is the shape the
// signup form consumes.
func (h *CommunityHandler) Get(c *gin.Context) {
	comm, err := h.communityRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFoundError(c, "Community not found")
			return
		}
		response.BadRequestError(c, "Invalid community id")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"id":             comm.ID,
		"name":           comm.Name,
		"logo_url":       comm.LogoURL,
		"occupied_seats": comm.OccupiedSeats,
		"seat_capacity":  comm.SeatCapacity,
		"countries":      comm.CountriesMap(),
	})
}

// CreateCommunityRequest is the admin payload for a new community
type CreateCommunityRequest struct {
	Name         string   `json:"name" binding:"required"`
	SeatCapacity int      `json:"seat_capacity" binding:"required"`
	Countries    []string `json:"countries" binding:"required"`
}

// Create handles POST /api/communities (admin)
func (h *CommunityHandler) Create(c *gin.Context) {
	var req CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	if err := h.validator.ValidateCommunityName(req.Name); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := h.validator.ValidateSeatCapacity(req.SeatCapacity); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := h.validator.ValidateCountries(req.Countries); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	comm := community.NewCommunity(req.Name, req.SeatCapacity, req.Countries)
	if err := h.communityRepo.Create(comm); err != nil {
		if errors.Is(err, postgres.ErrDuplicate) {
			response.ConflictError(c, "A community with that name already exists")
			return
		}
		response.InternalServerError(c, "Failed to create community")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "Community created", comm)
}

// Roster handles GET /api/communities/:id/roster (admin)
func (h *CommunityHandler) Roster(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.communityRepo.GetByID(id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFoundError(c, "Community not found")
			return
		}
		response.BadRequestError(c, "Invalid community id")
		return
	}

	members, err := h.personRepo.GetCommunityMembers(id)
	if err != nil {
		response.InternalServerError(c, "Failed to load roster")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", members)
}

// maxLogoSize caps logo uploads at 2MB
const maxLogoSize = 2 << 20

// UploadLogo handles POST /api/communities/:id/logo (admin). The file goes
// to the object store and the resulting URL is saved on the community.
func (h *CommunityHandler) UploadLogo(c *gin.Context) {
	if h.logos == nil {
		response.InternalServerError(c, "Object storage is not configured")
		return
	}

	id := c.Param("id")
	if _, err := h.communityRepo.GetByID(id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFoundError(c, "Community not found")
			return
		}
		response.BadRequestError(c, "Invalid community id")
		return
	}

	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		response.BadRequestError(c, "No logo file provided")
		return
	}
	defer file.Close()

	if header.Size > maxLogoSize {
		response.BadRequestError(c, "Logo exceeds the 2MB size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	url, err := h.logos.UploadLogo(c.Request.Context(), id, file, header.Size, contentType)
	if err != nil {
		response.BadRequestError(c, "Failed to store logo: "+err.Error())
		return
	}

	if err := h.communityRepo.UpdateLogoURL(id, url); err != nil {
		response.InternalServerError(c, "Failed to save logo URL")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "Logo uploaded", gin.H{"logo_url": url})
}
