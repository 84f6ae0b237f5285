package dto

type CreatePlaylistDTO struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
}

type UpdatePlaylistDTO struct {
	Title       *string `json:"title" form:"title" binding:"omitempty,min=1"`
	Description *string `json:"description" form:"description"`
}

type PlaylistVideoDTO struct {
	VideoID string `json:"videoId" form:"videoId" binding:"required"`
	Order   *int   `json:"order" form:"order"`
}

type ReorderPlaylistDTO struct {
	CurrentIdx     *int `json:"currentIdx" form:"currentIdx" binding:"required"`
	DestinationIdx *int `json:"destinationIdx" form:"destinationIdx" binding:"required"`
}
