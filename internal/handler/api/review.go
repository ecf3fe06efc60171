package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	reqdto "storefront-core/internal/handler/dto/request"
	resdto "storefront-core/internal/handler/dto/response"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// maxMultipartMemory caps what ParseMultipartForm keeps in memory; the rest
// spills to temporary files.
const maxMultipartMemory = 8 << 20

type ReviewHandler struct {
	cmds commands.ReviewCommands
	q    queries.ReviewQueries
}

func NewReviewHandler(cmds commands.ReviewCommands, q queries.ReviewQueries) *ReviewHandler {
	return &ReviewHandler{cmds: cmds, q: q}
}

// @Summary Submit or update review
// @Description Create the caller's review of a product, or edit it in place. Requires a completed order containing the product.
// @Tags reviews
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param rating formData int true "Rating (1-5)"
// @Param comment formData string false "Comment (max 1000 characters)"
// @Param images formData file false "Images to attach (repeatable)"
// @Param retain_image_ids formData string false "Existing image IDs to keep (repeatable); omit to keep all"
// @Success 200 {object} resdto.ReviewResponse "Existing review updated"
// @Success 201 {object} resdto.ReviewResponse "Review created"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/products/{id}/review [put]
func (h *ReviewHandler) Submit(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var form reqdto.SubmitReviewForm
	if err := c.ShouldBind(&form); err != nil {
		abortInvalidRequest(c, err)
		return
	}
	mf, err := multipartForm(c)
	if err != nil {
		abortInvalidRequest(c, err)
		return
	}
	req, err := form.ToCommand(productID, mf)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}

	actor, _ := middleware.GetActor(c)
	result, err := h.cmds.SubmitReview(c.Request.Context(), actor, req)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}

	res, err := resdto.FromReviewView(queries.ToReviewView(result.Review))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// @Summary List product reviews
// @Description List reviews of a product, newest first
// @Tags reviews
// @Produce json
// @Param id path string true "Product ID"
// @Param limit query int false "Max items (default 20, max 100)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} resdto.ReviewListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/products/{id}/reviews [get]
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var query reqdto.ReviewListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortInvalidRequest(c, err)
		return
	}

	views, err := h.q.ListByProduct(c.Request.Context(), productID, query.Limit, query.Offset)
	if err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}

	res, err := resdto.FromReviewViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// multipartForm also accepts url-encoded bodies, which carry no files.
func multipartForm(c *gin.Context) (*multipart.Form, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return &multipart.Form{Value: c.Request.PostForm}, nil
		}
		return nil, err
	}
	return c.Request.MultipartForm, nil
}
