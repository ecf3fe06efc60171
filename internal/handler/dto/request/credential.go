package request

type RequestRotationRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
}

type VerifyRotationRequest struct {
	Code        string `json:"code" binding:"required,max=32"`
	NewPassword string `json:"new_password" binding:"required,max=72"`
}
