package dto

type UpdateUserDTO struct {
	FullName *string `json:"fullName" form:"fullName"`
	Username *string `json:"username" form:"username" binding:"omitempty,min=1"`
	Email    *string `json:"email" form:"email" binding:"omitempty,email"`
}

func (d UpdateUserDTO) Empty() bool {
	return d.FullName == nil && d.Username == nil && d.Email == nil
}
