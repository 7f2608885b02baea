package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/contactbook/contactbook-api/internal/middleware"
	"github.com/contactbook/contactbook-api/internal/models"
	"github.com/contactbook/contactbook-api/internal/services"
	"github.com/gin-gonic/gin"
)

const contactNotFound = "Contact not found"

// ContactHandler serves the signed-in user's address book
type ContactHandler struct {
	service services.ContactServiceInterface
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(service services.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// List handles GET /api/v1/contacts?q=&page=
func (h *ContactHandler) List(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	// Unparseable pages behave like the first one
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.service.List(c.Request.Context(), models.ContactListParams{
		OwnerID: session.UserID,
		Search:  strings.TrimSpace(c.Query("q")),
		Page:    page,
	})
	if err != nil {
		respondServiceError(c, "contact", contactNotFound, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/v1/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	contact, err := h.service.Get(c.Request.Context(), id, session.UserID)
	if err != nil {
		respondServiceError(c, "contact", contactNotFound, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// Create handles POST /api/v1/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	sub, err := bindContactSubmission(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	contact, err := h.service.Create(c.Request.Context(), session.UserID, sub)
	if err != nil {
		respondServiceError(c, "contact", contactNotFound, err)
		return
	}

	c.JSON(http.StatusCreated, models.ContactResponse{
		Success: true,
		Message: "Contact created successfully",
		Contact: contact,
	})
}

// Update handles POST /api/v1/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	sub, err := bindContactSubmission(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	contact, err := h.service.Update(c.Request.Context(), id, session.UserID, sub)
	if err != nil {
		respondServiceError(c, "contact", contactNotFound, err)
		return
	}

	c.JSON(http.StatusOK, models.ContactResponse{
		Success: true,
		Message: "Contact updated successfully",
		Contact: contact,
	})
}

// Delete handles POST /api/v1/contacts/:id/delete
// Without confirmation=yes the contact is returned untouched so the client can ask again.
func (h *ContactHandler) Delete(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}

	var req models.DeleteContactRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if req.Confirmation == "" {
		req.Confirmation = "no"
	}

	contact, deleted, err := h.service.Delete(c.Request.Context(), id, session.UserID, req.Confirmation)
	if err != nil {
		respondServiceError(c, "contact", contactNotFound, err)
		return
	}

	if !deleted {
		c.JSON(http.StatusOK, models.DeleteContactResponse{
			Success:      false,
			Message:      "Confirm the deletion by sending confirmation=yes",
			Confirmation: req.Confirmation,
			Contact:      contact,
		})
		return
	}

	c.JSON(http.StatusOK, models.DeleteContactResponse{
		Success:      true,
		Message:      "Contact deleted successfully",
		Confirmation: req.Confirmation,
	})
}

func requireSession(c *gin.Context) (*models.UserSession, bool) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Authentication required", err)
		return nil, false
	}
	return session, true
}

func contactID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusNotFound, contactNotFound, fmt.Errorf("invalid contact id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
