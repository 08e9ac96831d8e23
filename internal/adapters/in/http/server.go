// Package http exposes the order operations over REST using echo.
// Every route maps onto exactly one command or query. Routes, models and path
// parameter binding come from internal/generated/servers; requests are checked
// against the same OpenAPI document before they reach a handler.
package http

import (
	"net/http"

	"kiosk/internal/core/application/usecases/commands"
	"kiosk/internal/core/application/usecases/queries"
	"kiosk/internal/core/domain/model/kernel"
	"kiosk/internal/generated/servers"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers bundles the use cases served over HTTP.
type Handlers struct {
	CreateOrder    *commands.CreateOrderCommandHandler
	ReprintOrder   *commands.ReprintOrderCommandHandler
	OpenPayment    *commands.OpenPaymentCommandHandler
	ConfirmPayment *commands.ConfirmPaymentCommandHandler
	AttachAssets   *commands.AttachAssetsCommandHandler
	MarkPrinted    *commands.MarkPrintedCommandHandler
	RedeemPickup   *commands.RedeemPickupCodeCommandHandler
	GetOrderStatus queries.GetOrderStatusQueryHandler
}

var _ servers.ServerInterface = (*Server)(nil)

// Server implements servers.ServerInterface on top of the use cases.
type Server struct {
	handlers Handlers
	metrics  http.Handler
}

// NewServer creates the HTTP server. metrics may be nil, in which case
// /metrics is not registered.
func NewServer(handlers Handlers, metrics http.Handler) *Server {
	return &Server{handlers: handlers, metrics: metrics}
}

// Register mounts the API routes behind the request validator, the ops
// endpoints and the Swagger UI on e.
func (s *Server) Register(e *echo.Echo) error {
	swagger, err := servers.GetSwagger()
	if err != nil {
		return err
	}
	validator, err := requestValidator(swagger)
	if err != nil {
		return err
	}
	if err := registerSwaggerDoc(swagger); err != nil {
		return err
	}

	e.HTTPErrorHandler = errorHandler
	e.Use(validator)
	e.GET("/health", s.Health)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	servers.RegisterHandlers(e, s)
	return nil
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req servers.CreateOrderJSONRequestBody
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	files, err := toPrintFiles(req.Files)
	if err != nil {
		return respondError(ctx, err)
	}
	refs, err := kernel.NewAssetRefs(deref(req.AssetRefs))
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), files, refs, deref(req.PaymentRef))
	if err != nil {
		return respondError(ctx, err)
	}

	created, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, toOrder(created))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context, orderID servers.OrderId) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return respondError(ctx, err)
	}
	query, err := queries.NewGetOrderStatusQuery(id)
	if err != nil {
		return respondError(ctx, err)
	}

	resp, err := s.handlers.GetOrderStatus.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrderStatus(resp))
}

// ReprintOrder handles POST /api/v1/orders/:id/reprint.
func (s *Server) ReprintOrder(ctx echo.Context, orderID servers.OrderId) error {
	sourceID, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return respondError(ctx, err)
	}
	cmd, err := commands.NewReprintOrderCommand(sourceID, kernel.NewUUID())
	if err != nil {
		return respondError(ctx, err)
	}

	reprint, err := s.handlers.ReprintOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, toOrder(reprint))
}

// OpenPayment handles POST /api/v1/orders/:id/payment.
func (s *Server) OpenPayment(ctx echo.Context, orderID servers.OrderId) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return respondError(ctx, err)
	}
	cmd, err := commands.NewOpenPaymentCommand(id)
	if err != nil {
		return respondError(ctx, err)
	}

	paymentRef, err := s.handlers.OpenPayment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, servers.Payment{PaymentRef: paymentRef})
}

// ConfirmPayment handles POST /api/v1/orders/:id/payment/confirm.
func (s *Server) ConfirmPayment(ctx echo.Context, orderID servers.OrderId) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return respondError(ctx, err)
	}
	var req servers.ConfirmPaymentJSONRequestBody
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	cmd, err := commands.NewConfirmPaymentCommand(id, req.PaymentRef, req.Signature)
	if err != nil {
		return respondError(ctx, err)
	}

	pickup, err := s.handlers.ConfirmPayment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, servers.PickupCode{PickupCode: pickup.String()})
}

// AttachAssets handles PUT /api/v1/orders/:id/assets.
func (s *Server) AttachAssets(ctx echo.Context, orderID servers.OrderId) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return respondError(ctx, err)
	}
	var req servers.AttachAssetsJSONRequestBody
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	refs, err := kernel.NewAssetRefs(req.AssetRefs)
	if err != nil {
		return respondError(ctx, err)
	}
	cmd, err := commands.NewAttachAssetsCommand(id, refs)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.handlers.AttachAssets.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// MarkPrinted handles POST /api/v1/orders/:id/printed.
func (s *Server) MarkPrinted(ctx echo.Context, orderID servers.OrderId) error {
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return respondError(ctx, err)
	}
	cmd, err := commands.NewMarkPrintedCommand(id)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.handlers.MarkPrinted.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RedeemPickupCode handles POST /api/v1/pickup/:code.
func (s *Server) RedeemPickupCode(ctx echo.Context, code string) error {
	cmd, err := commands.NewRedeemPickupCodeCommand(code)
	if err != nil {
		return respondError(ctx, err)
	}

	redeemed, err := s.handlers.RedeemPickup.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(redeemed))
}
