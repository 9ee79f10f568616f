package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/service-portal/internal/core/domain"
	"github.com/99minutos/service-portal/internal/core/ports"
)

const idempotencyHeader = "Idempotency-Key"

// OrderHandler handles the new-order flow and the actions on one order.
type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Form handles GET /new-service.
//
// @Summary      New order form
// @Description  Service catalog, recipients, budget and whether the next order is free.
// @Tags         orders
// @Produce      json
// @Success      200  {object}  orderFormResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /new-service [get]
func (h *OrderHandler) Form(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	form, err := h.orders.Form(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderFormResponse(form))
}

// Quote handles POST /new-service/quote.
//
// @Summary      Price a selection
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      quoteRequest  true  "Selected services"
// @Success      200   {object}  quoteResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /new-service/quote [post]
func (h *OrderHandler) Quote(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req quoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	q, err := h.orders.Quote(c.Request().Context(), sess, toLineItems(req.Items))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuoteResponse(*q))
}

// Create handles POST /orders.
//
// @Summary      Place a new order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      placeOrderRequest  true   "Order"
// @Success      201              {object}  placeOrderResponse
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req placeOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.orders.Place(c.Request().Context(), sess, ports.PlaceOrderInput{
		Items:          toLineItems(req.Items),
		RecipientID:    req.RecipientID,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
	})
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, orderPath(res.Order.ID))
	return c.JSON(http.StatusCreated, toPlaceOrderResponse(res))
}

// Get handles GET /orders/:id.
//
// @Summary      Order detail
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Get(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order, sess.Role))
}

// Cancel handles PUT /orders/:id/cancel.
//
// @Summary      Cancel an order
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  statusResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /orders/{id}/cancel [put]
func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, domain.StatusCancelled, h.orders.Cancel)
}

// Complete handles PUT /orders/:id/complete.
//
// @Summary      Complete an order
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  statusResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /orders/{id}/complete [put]
func (h *OrderHandler) Complete(c echo.Context) error {
	return h.transition(c, domain.StatusCompleted, h.orders.Complete)
}

type transitionFunc func(ctx context.Context, s domain.Session, id int64) error

func (h *OrderHandler) transition(c echo.Context, to domain.OrderStatus, fn transitionFunc) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	if err := fn(c.Request().Context(), sess, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{ID: id, Status: string(to)})
}

// RepeatPreview handles GET /orders/:id/repeat.
//
// @Summary      Preview repeating an order
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  repeatPreviewResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /orders/{id}/repeat [get]
func (h *OrderHandler) RepeatPreview(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	p, err := h.orders.PreviewRepeat(c.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRepeatPreviewResponse(p))
}

// Repeat handles POST /orders/:id/repeat.
//
// @Summary      Repeat an order
// @Tags         orders
// @Produce      json
// @Param        Idempotency-Key  header    string  false  "Idempotency key to prevent duplicate submissions"
// @Param        id               path      int     true   "Order id"
// @Success      201              {object}  placeOrderResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /orders/{id}/repeat [post]
func (h *OrderHandler) Repeat(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	res, err := h.orders.Repeat(c.Request().Context(), sess, id, c.Request().Header.Get(idempotencyHeader))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, orderPath(res.Order.ID))
	return c.JSON(http.StatusCreated, toPlaceOrderResponse(res))
}

// Rate handles POST /orders/:id/rate.
//
// @Summary      Rate a completed order
// @Tags         orders
// @Accept       json
// @Param        id    path  int          true  "Order id"
// @Param        body  body  rateRequest  true  "Rating from 1 to 5"
// @Success      204
// @Failure      422   {object}  errorResponse
// @Router       /orders/{id}/rate [post]
func (h *OrderHandler) Rate(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req rateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.orders.Rate(c.Request().Context(), sess, id, req.Rating); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
