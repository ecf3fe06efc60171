package api

import (
	"net/http"

	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	cmds commands.OrderCommands
	q    queries.OrderQueries
}

func NewOrderHandler(cmds commands.OrderCommands, q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, q: q}
}

// @Summary Place order
// @Description Place an order for catalog items; the shipping fee is derived from the region
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PlaceOrderRequest true "Place order request"
// @Success 201 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req reqdto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}

	actor, _ := middleware.GetActor(c)
	o, err := h.cmds.PlaceOrder(c.Request.Context(), actor, req.ToCommand())
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}

	c.Header("Location", "/api/orders/"+o.ID().String())
	h.respond(c, http.StatusCreated, queries.ToOrderView(o))
}

// @Summary List orders
// @Description List the caller's orders, newest first. Administrators see every order.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param limit query int false "Max items (default 20, max 100)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} resdto.OrderListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var query reqdto.OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortInvalidRequest(c, err)
		return
	}

	actor, _ := middleware.GetActor(c)
	views, err := h.q.List(c.Request.Context(), actor, queries.OrderListFilter{
		Status: query.Status,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}

	res, err := resdto.FromOrderViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Get order
// @Description Get an order owned by the caller (administrators can read any)
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor, _ := middleware.GetActor(c)
	view, err := h.q.Get(c.Request.Context(), actor, id)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	h.respond(c, http.StatusOK, view)
}

// @Summary Set order status
// @Description Administrator override; any status may be set
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.SetOrderStatusRequest true "New status"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/admin/orders/{id}/status [patch]
func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reqdto.SetOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}

	actor, _ := middleware.GetActor(c)
	o, err := h.cmds.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	h.respond(c, http.StatusOK, queries.ToOrderView(o))
}

// @Summary Cancel order
// @Description Cancel a pending order owned by the caller
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.CancelOrderRequest false "Optional reason"
// @Success 200 {object} resdto.OrderResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reqdto.CancelOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortInvalidRequest(c, err)
			return
		}
	}

	actor, _ := middleware.GetActor(c)
	o, err := h.cmds.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	h.respond(c, http.StatusOK, queries.ToOrderView(o))
}

// @Summary Confirm receipt
// @Description Mark a delivered order owned by the caller as completed
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/orders/{id}/confirm-receipt [post]
func (h *OrderHandler) ConfirmReceipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor, _ := middleware.GetActor(c)
	o, err := h.cmds.ConfirmReceipt(c.Request.Context(), actor, id)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	h.respond(c, http.StatusOK, queries.ToOrderView(o))
}

func (h *OrderHandler) respond(c *gin.Context, status int, view *queries.OrderView) {
	res, err := resdto.FromOrderView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(status, res)
}
