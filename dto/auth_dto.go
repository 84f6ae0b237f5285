package dto

// RegisterDTO is bound from the multipart register form; the avatar and
// coverImage files are read separately.
type RegisterDTO struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
	FullName string `form:"fullName" json:"fullName" binding:"required"`
}

type LoginDTO struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}
