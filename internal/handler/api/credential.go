package api

import (
	"net/http"

	reqdto "storefront-core/internal/handler/dto/request"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CredentialHandler struct {
	cmds commands.CredentialCommands
}

func NewCredentialHandler(cmds commands.CredentialCommands) *CredentialHandler {
	return &CredentialHandler{cmds: cmds}
}

// @Summary Request password change code
// @Description Verify the current password and email a one-time code to the account address
// @Tags credentials
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.RequestRotationRequest true "Current password"
// @Success 202 "Code sent"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Router /api/me/password/rotation [post]
func (h *CredentialHandler) RequestRotation(c *gin.Context) {
	var req reqdto.RequestRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}

	actor, _ := middleware.GetActor(c)
	if err := h.cmds.RequestRotation(c.Request.Context(), actor, req.CurrentPassword); err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "A password change code has been sent to your email address"})
}

// @Summary Verify code and change password
// @Description Submit the emailed code with the new password
// @Tags credentials
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.VerifyRotationRequest true "Code and new password"
// @Success 204 "Password changed"
// @Failure 400 {object} httperr.Response "Incorrect code or weak password"
// @Failure 410 {object} httperr.Response "No live code"
// @Failure 429 {object} httperr.Response "Attempts exhausted"
// @Router /api/me/password/rotation/verify [post]
func (h *CredentialHandler) VerifyRotation(c *gin.Context) {
	var req reqdto.VerifyRotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortInvalidRequest(c, err)
		return
	}

	actor, _ := middleware.GetActor(c)
	if err := h.cmds.VerifyAndRotate(c.Request.Context(), actor, req.Code, req.NewPassword); err != nil {
		httperr.AbortWithClassified(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
