package dto

type UploadVideoDTO struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
}

type UpdateVideoDTO struct {
	Title       *string `json:"title" form:"title" binding:"omitempty,min=1"`
	Description *string `json:"description" form:"description"`
}

type TogglePublishDTO struct {
	IsPublished *bool `json:"isPublished" form:"isPublished"`
}

type IncrementViewDTO struct {
	IncrementView bool `json:"incrementView" form:"incrementView"`
}
