package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// CRUDHandler serves the five operations of one resource
type CRUDHandler interface {
	HandleCreate(ctx context.Context, req *Request) (*Response, error)
	HandleGet(ctx context.Context, req *Request) (*Response, error)
	HandleList(ctx context.Context, req *Request) (*Response, error)
	HandleUpdate(ctx context.Context, req *Request) (*Response, error)
	HandleDelete(ctx context.Context, req *Request) (*Response, error)
}

// Router dispatches proxy requests for one resource by method and by the
// presence of an id path parameter.
type Router struct {
	handler  CRUDHandler
	idParams []string
	logger   *logrus.Logger
}

// NewRouter creates a router; idParam is the resource's path parameter name
// and "id" is always accepted as a fallback.
func NewRouter(handler CRUDHandler, idParam string, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	params := []string{idParam}
	if idParam != "id" {
		params = append(params, "id")
	}
	return &Router{
		handler:  handler,
		idParams: params,
		logger:   logger,
	}
}

// Route selects the handler operation for req
func (r *Router) Route(ctx context.Context, req *Request) (*Response, error) {
	hasID := req.PathParam(r.idParams...) != ""

	switch {
	case req.Method == http.MethodPost && !hasID:
		return r.handler.HandleCreate(ctx, req)
	case req.Method == http.MethodGet && hasID:
		return r.handler.HandleGet(ctx, req)
	case req.Method == http.MethodGet:
		return r.handler.HandleList(ctx, req)
	case (req.Method == http.MethodPut || req.Method == http.MethodPatch) && hasID:
		return r.handler.HandleUpdate(ctx, req)
	case req.Method == http.MethodDelete && hasID:
		return r.handler.HandleDelete(ctx, req)
	default:
		return JSONResponse(http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"}), nil
	}
}

// HandleAPIGateway is the Lambda entry point for API Gateway proxy events
func (r *Router) HandleAPIGateway(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := FromAPIGateway(event)
	if err != nil {
		return JSONResponse(http.StatusBadRequest, map[string]string{"error": err.Error()}).ToAPIGateway(), nil
	}

	resp, err := r.Route(ctx, req)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"method":     req.Method,
			"path":       req.Path,
			"request_id": req.RequestID,
		}).WithError(err).Error("Unhandled error")
		return JSONResponse(http.StatusInternalServerError, map[string]string{"error": "Internal server error"}).ToAPIGateway(), nil
	}

	return resp.ToAPIGateway(), nil
}
