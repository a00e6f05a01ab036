package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-content-api/internal/models"
	"blog-content-api/internal/services"
	"blog-content-api/pkg/lambda"
)

// ResourceHandler exposes a ResourceService over Lambda proxy requests and
// gin routes. Both transports share the same envelopes and status codes.
type ResourceHandler struct {
	service *services.ResourceService
	schema  *models.ResourceSchema
	logger  *logrus.Logger
}

var _ lambda.CRUDHandler = (*ResourceHandler)(nil)

// NewResourceHandler creates a handler for service
func NewResourceHandler(service *services.ResourceService, logger *logrus.Logger) *ResourceHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ResourceHandler{
		service: service,
		schema:  service.Schema(),
		logger:  logger,
	}
}

// Schema returns the resource schema served by the handler
func (h *ResourceHandler) Schema() *models.ResourceSchema {
	return h.schema
}

func (h *ResourceHandler) create(ctx context.Context, body []byte) (int, interface{}) {
	payload, err := decodePayload(body)
	if err != nil {
		return h.fail("create", "", err)
	}

	item, err := h.service.Create(ctx, payload)
	if err != nil {
		return h.fail("create", "", err)
	}

	h.done("create", item.ID(), http.StatusCreated)
	return http.StatusCreated, map[string]interface{}{
		"message":        fmt.Sprintf("%s created successfully", h.schema.DisplayName()),
		h.schema.IDKey(): item.ID(),
	}
}

func (h *ResourceHandler) get(ctx context.Context, id string) (int, interface{}) {
	item, err := h.service.Get(ctx, id)
	if err != nil {
		return h.fail("get", id, err)
	}

	h.done("get", id, http.StatusOK)
	return http.StatusOK, map[string]interface{}{h.schema.Name: item}
}

// list reports an empty collection as 404, matching the deployed API.
func (h *ResourceHandler) list(ctx context.Context) (int, interface{}) {
	items, err := h.service.List(ctx)
	if err != nil {
		return h.fail("list", "", err)
	}

	if len(items) == 0 {
		h.done("list", "", http.StatusNotFound)
		return http.StatusNotFound, MessageResponse{Message: fmt.Sprintf("No %s found", h.schema.Plural)}
	}

	h.done("list", "", http.StatusOK)
	return http.StatusOK, map[string]interface{}{h.schema.Plural: items}
}

func (h *ResourceHandler) update(ctx context.Context, id string, body []byte) (int, interface{}) {
	payload, err := decodePayload(body)
	if err != nil {
		return h.fail("update", id, err)
	}

	item, err := h.service.Update(ctx, id, payload)
	if err != nil {
		return h.fail("update", id, err)
	}

	h.done("update", id, http.StatusOK)
	return http.StatusOK, map[string]interface{}{
		"message":     fmt.Sprintf("%s updated successfully", h.schema.DisplayName()),
		h.schema.Name: item,
	}
}

func (h *ResourceHandler) delete(ctx context.Context, id string) (int, interface{}) {
	if err := h.service.Delete(ctx, id); err != nil {
		return h.fail("delete", id, err)
	}

	h.done("delete", id, http.StatusOK)
	return http.StatusOK, MessageResponse{Message: fmt.Sprintf("%s deleted successfully", h.schema.DisplayName())}
}

// Lambda handler methods

// HandleCreate implements lambda.CRUDHandler
func (h *ResourceHandler) HandleCreate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return lambda.JSONResponse(h.create(ctx, req.Body)), nil
}

// HandleGet implements lambda.CRUDHandler
func (h *ResourceHandler) HandleGet(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return lambda.JSONResponse(h.get(ctx, h.lambdaID(req))), nil
}

// HandleList implements lambda.CRUDHandler
func (h *ResourceHandler) HandleList(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return lambda.JSONResponse(h.list(ctx)), nil
}

// HandleUpdate implements lambda.CRUDHandler
func (h *ResourceHandler) HandleUpdate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return lambda.JSONResponse(h.update(ctx, h.lambdaID(req), req.Body)), nil
}

// HandleDelete implements lambda.CRUDHandler
func (h *ResourceHandler) HandleDelete(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return lambda.JSONResponse(h.delete(ctx, h.lambdaID(req))), nil
}

func (h *ResourceHandler) lambdaID(req *lambda.Request) string {
	return req.PathParam(h.schema.PathParam(), "id")
}

// Gin handler methods

// Create handles POST /{resources}
// @Summary Create an item
// @Description Create a post, category or profile. Image and avatar data are base64 encoded.
// @Tags posts,categories,profiles
// @Accept json
// @Produce json
// @Param item body object true "Item fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /posts [post]
// @Router /categories [post]
// @Router /profiles [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	c.JSON(h.create(c.Request.Context(), body))
}

// Get handles GET /{resources}/:id
// @Summary Get an item
// @Tags posts,categories,profiles
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /posts/{id} [get]
// @Router /categories/{id} [get]
// @Router /profiles/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	c.JSON(h.get(c.Request.Context(), c.Param("id")))
}

// List handles GET /{resources}
// @Summary List items
// @Description An empty collection is reported as 404.
// @Tags posts,categories,profiles
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /posts [get]
// @Router /categories [get]
// @Router /profiles [get]
func (h *ResourceHandler) List(c *gin.Context) {
	c.JSON(h.list(c.Request.Context()))
}

// Update handles PUT /{resources}/:id
// @Summary Update an item
// @Description Fields missing from the body keep their stored values.
// @Tags posts,categories,profiles
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param item body object true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /posts/{id} [put]
// @Router /categories/{id} [put]
// @Router /profiles/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	c.JSON(h.update(c.Request.Context(), c.Param("id"), body))
}

// Delete handles DELETE /{resources}/:id
// @Summary Delete an item
// @Tags posts,categories,profiles
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /posts/{id} [delete]
// @Router /categories/{id} [delete]
// @Router /profiles/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	c.JSON(h.delete(c.Request.Context(), c.Param("id")))
}

// RegisterRoutes mounts the resource under group
func (h *ResourceHandler) RegisterRoutes(group *gin.RouterGroup) {
	r := group.Group("/" + h.schema.Plural)
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.PATCH("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler) fail(op, id string, err error) (int, interface{}) {
	status, body := errorBody(err)

	entry := h.entry(op, id, status).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.WithField("error_kind", services.KindOf(err).String()).Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}
	return status, body
}

func (h *ResourceHandler) done(op, id string, status int) {
	h.entry(op, id, status).Info("Request completed")
}

func (h *ResourceHandler) entry(op, id string, status int) *logrus.Entry {
	fields := logrus.Fields{
		"resource":    h.schema.Name,
		"operation":   op,
		"status_code": status,
	}
	if id != "" {
		fields["id"] = id
	}
	return h.logger.WithFields(fields)
}

// decodePayload parses a JSON object body. A JSON null decodes to an empty
// payload.
func decodePayload(body []byte) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &services.ValidationError{Reason: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return payload, nil
}
