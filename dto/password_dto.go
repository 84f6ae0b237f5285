package dto

type ChangePasswordDTO struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" binding:"required,min=8"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type ResetPasswordDTO struct {
	Password string `json:"password" form:"password" binding:"required,min=8"`
}
