package v1

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/contact-service/internal/core/domain"
	logicv1 "github.com/duynhne/contact-service/internal/logic/v1"
	"github.com/duynhne/contact-service/middleware"
)

// Client-facing error messages.
const (
	msgRequiredFields = "First name, last name, and email are required."
	msgInvalidBody    = "Request body must be a JSON contact object."
	msgNotFound       = "Contact not found."
	msgDuplicateEmail = "A contact with this email already exists."
)

// ContactHandler handles HTTP requests for contact operations
type ContactHandler struct {
	service *logicv1.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service *logicv1.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// CreateContact handles POST /contacts
func (h *ContactHandler) CreateContact(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	var in domain.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		logger.Warn("Invalid create request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeBindError(err)})
		return
	}

	contact, err := h.service.CreateContact(ctx, in)
	if err != nil {
		writeError(c, logger, err, "An error occurred while creating the contact.")
		return
	}

	logger.Info("Contact created", zap.Int64("contact_id", contact.ID))
	c.JSON(http.StatusCreated, contact)
}

// ListContacts handles GET /contacts
func (h *ContactHandler) ListContacts(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	contacts, err := h.service.ListContacts(ctx)
	if err != nil {
		writeError(c, logger, err, "An error occurred while fetching contacts.")
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// GetContact handles GET /contacts/:id
func (h *ContactHandler) GetContact(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("contact.id", id))

	contact, err := h.service.GetContact(ctx, id)
	if err != nil {
		writeError(c, logger, err, "An error occurred while fetching the contact.")
		return
	}

	c.JSON(http.StatusOK, contact)
}

// UpdateContact handles PUT /contacts/:id
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("contact.id", id))

	// An empty body changes nothing. Any other unreadable body is a 400,
	// but only for a contact that exists.
	var u domain.ContactUpdate
	if err := c.ShouldBindJSON(&u); err != nil && !errors.Is(err, io.EOF) {
		span.SetAttributes(attribute.Bool("request.valid", false))
		if err := h.service.RequireContact(ctx, id); err != nil {
			writeError(c, logger, err, "An error occurred while updating the contact.")
			return
		}
		logger.Warn("Invalid update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeBindError(err)})
		return
	}

	contact, err := h.service.UpdateContact(ctx, id, u)
	if err != nil {
		writeError(c, logger, err, "An error occurred while updating the contact.")
		return
	}

	logger.Info("Contact updated", zap.Int64("contact_id", id))
	c.JSON(http.StatusOK, contact)
}

// DeleteContact handles DELETE /contacts/:id
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("contact.id", id))

	if err := h.service.DeleteContact(ctx, id); err != nil {
		writeError(c, logger, err, "An error occurred while deleting the contact.")
		return
	}

	logger.Info("Contact deleted", zap.Int64("contact_id", id))
	c.Status(http.StatusNoContent)
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("route", c.FullPath()),
	))
}

// parseID reads :id. A non-integer id cannot name any contact, so it is answered as not found.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return 0, false
	}
	return id, true
}

// writeError translates domain errors into status codes; anything unrecognized is a 500 with a generic message.
func writeError(c *gin.Context, logger *zap.Logger, err error, unexpectedMsg string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		logger.Warn("Contact validation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgRequiredFields})
	case errors.Is(err, domain.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	case errors.Is(err, domain.ErrDuplicateEmail):
		logger.Warn("Duplicate contact email", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": msgDuplicateEmail})
	default:
		logger.Error("Contact operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": unexpectedMsg})
	}
}
