package dto

type CreateCommentDTO struct {
	VideoID string `json:"videoId" form:"videoId" binding:"required"`
	Text    string `json:"text" form:"text" binding:"required"`
}

type ReplyDTO struct {
	Text string `json:"text" form:"text" binding:"required"`
}
