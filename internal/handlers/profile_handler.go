package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmun/delegation-api/internal/middleware/session"
	"github.com/openmun/delegation-api/internal/response"
	"github.com/openmun/delegation-api/internal/storage/postgres"
)

// ProfileHandler serves the signed-in delegate's own profile page
type ProfileHandler struct {
	store postgres.RepositoryContainer
}

func NewProfileHandler(store postgres.RepositoryContainer) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// Get handles GET /api/profile. The profile record appears once the email
// verification has been reconciled; until then only the person is returned.
func (h *ProfileHandler) Get(c *gin.Context) {
	personID := c.GetString(session.PersonIDKey)

	p, err := h.store.People().GetByID(personID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			response.NotFoundError(c, "Person not found")
			return
		}
		response.InternalServerError(c, "Failed to load person")
		return
	}

	payload := gin.H{
		"person": p,
	}

	if prof, err := h.store.Profiles().GetByID(personID); err == nil {
		payload["profile"] = prof
	} else if !errors.Is(err, postgres.ErrNotFound) {
		response.InternalServerError(c, "Failed to load profile")
		return
	}

	if p.HasCommunity() {
		if comm, err := h.store.Communities().GetByID(p.CommunityID.String()); err == nil {
			payload["community_name"] = comm.Name
		}
	}

	response.SuccessResponse(c, http.StatusOK, "", payload)
}
