// Package servers holds the models, the ServerInterface and the echo route
// registration for api/openapi.yaml, in the layout oapi-codegen emits for
// the echo server target.
package servers

import (
	"fmt"
	"net/http"
	"time"

	"kiosk/api"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// AttachAssets defines model for AttachAssets.
type AttachAssets struct {
	AssetRefs []string `json:"assetRefs"`
}

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	AssetRefs  *[]string   `json:"assetRefs,omitempty"`
	Files      []PrintFile `json:"files"`
	PaymentRef *string     `json:"paymentRef,omitempty"`
}

// Order defines model for Order.
type Order struct {
	Amount      int64              `json:"amount"`
	AssetRefs   []string           `json:"assetRefs"`
	CreatedAt   time.Time          `json:"createdAt"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Files       []PrintFile        `json:"files"`
	Id          openapi_types.UUID `json:"id"`
	PaymentRef  *string            `json:"paymentRef,omitempty"`
	PickupCode  *string            `json:"pickupCode,omitempty"`
	PrintedAt   *time.Time         `json:"printedAt,omitempty"`
	ReclaimedAt *time.Time         `json:"reclaimedAt,omitempty"`
	Status      string             `json:"status"`
	TotalPages  int                `json:"totalPages"`
}

// OrderStatus defines model for OrderStatus.
type OrderStatus struct {
	Amount      int64              `json:"amount"`
	AssetCount  int                `json:"assetCount"`
	CreatedAt   time.Time          `json:"createdAt"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Id          openapi_types.UUID `json:"id"`
	PaymentRef  *string            `json:"paymentRef,omitempty"`
	PickupCode  *string            `json:"pickupCode,omitempty"`
	PrintedAt   *time.Time         `json:"printedAt,omitempty"`
	ReclaimedAt *time.Time         `json:"reclaimedAt,omitempty"`
	Status      string             `json:"status"`
	TotalPages  int                `json:"totalPages"`
}

// Payment defines model for Payment.
type Payment struct {
	PaymentRef string `json:"paymentRef"`
}

// PaymentConfirmation defines model for PaymentConfirmation.
type PaymentConfirmation struct {
	PaymentRef string `json:"paymentRef"`
	Signature  string `json:"signature"`
}

// PickupCode defines model for PickupCode.
type PickupCode struct {
	PickupCode string `json:"pickupCode"`
}

// PrintFile defines model for PrintFile.
type PrintFile struct {
	// Color COLOR or BW
	Color     string  `json:"color"`
	Copies    int     `json:"copies"`
	Name      *string `json:"name,omitempty"`
	PageCount int     `json:"pageCount"`
}

// OrderId defines model for OrderId.
type OrderId = openapi_types.UUID

// CreateOrderJSONRequestBody defines body for CreateOrder for application/json ContentType.
type CreateOrderJSONRequestBody = NewOrder

// AttachAssetsJSONRequestBody defines body for AttachAssets for application/json ContentType.
type AttachAssetsJSONRequestBody = AttachAssets

// ConfirmPaymentJSONRequestBody defines body for ConfirmPayment for application/json ContentType.
type ConfirmPaymentJSONRequestBody = PaymentConfirmation

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Create an order
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// Get the status of an order
	// (GET /api/v1/orders/{id})
	GetOrder(ctx echo.Context, id OrderId) error
	// Attach uploaded files to an order
	// (PUT /api/v1/orders/{id}/assets)
	AttachAssets(ctx echo.Context, id OrderId) error
	// Open a payment order at the gateway
	// (POST /api/v1/orders/{id}/payment)
	OpenPayment(ctx echo.Context, id OrderId) error
	// Confirm a signed payment and issue a pickup code
	// (POST /api/v1/orders/{id}/payment/confirm)
	ConfirmPayment(ctx echo.Context, id OrderId) error
	// Report that the kiosk finished printing
	// (POST /api/v1/orders/{id}/printed)
	MarkPrinted(ctx echo.Context, id OrderId) error
	// Create an order sharing the files of an existing one
	// (POST /api/v1/orders/{id}/reprint)
	ReprintOrder(ctx echo.Context, id OrderId) error
	// Redeem a pickup code at the kiosk
	// (POST /api/v1/pickup/{code})
	RedeemPickupCode(ctx echo.Context, code string) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// CreateOrder converts echo context to params.
func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

// GetOrder converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	id, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, id)
}

// AttachAssets converts echo context to params.
func (w *ServerInterfaceWrapper) AttachAssets(ctx echo.Context) error {
	id, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.AttachAssets(ctx, id)
}

// OpenPayment converts echo context to params.
func (w *ServerInterfaceWrapper) OpenPayment(ctx echo.Context) error {
	id, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.OpenPayment(ctx, id)
}

// ConfirmPayment converts echo context to params.
func (w *ServerInterfaceWrapper) ConfirmPayment(ctx echo.Context) error {
	id, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ConfirmPayment(ctx, id)
}

// MarkPrinted converts echo context to params.
func (w *ServerInterfaceWrapper) MarkPrinted(ctx echo.Context) error {
	id, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.MarkPrinted(ctx, id)
}

// ReprintOrder converts echo context to params.
func (w *ServerInterfaceWrapper) ReprintOrder(ctx echo.Context) error {
	id, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.ReprintOrder(ctx, id)
}

// RedeemPickupCode converts echo context to params.
func (w *ServerInterfaceWrapper) RedeemPickupCode(ctx echo.Context) error {
	var code string

	err := runtime.BindStyledParameterWithOptions("simple", "code", ctx.Param("code"), &code,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter code: %s", err))
	}

	return w.Handler.RedeemPickupCode(ctx, code)
}

func bindOrderId(ctx echo.Context) (OrderId, error) {
	var id OrderId

	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the
// paths, so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/api/v1/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/api/v1/orders/:id", wrapper.GetOrder)
	router.PUT(baseURL+"/api/v1/orders/:id/assets", wrapper.AttachAssets)
	router.POST(baseURL+"/api/v1/orders/:id/payment", wrapper.OpenPayment)
	router.POST(baseURL+"/api/v1/orders/:id/payment/confirm", wrapper.ConfirmPayment)
	router.POST(baseURL+"/api/v1/orders/:id/printed", wrapper.MarkPrinted)
	router.POST(baseURL+"/api/v1/orders/:id/reprint", wrapper.ReprintOrder)
	router.POST(baseURL+"/api/v1/pickup/:code", wrapper.RedeemPickupCode)
}

// GetSwagger returns the OpenAPI document the routes above are built from.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("error loading Swagger: %w", err)
	}
	return swagger, nil
}
