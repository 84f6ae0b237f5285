package controllers

import (
	"net/http"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
)

// GET /admin/action-logs
func (a *App) GetActionLogs() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		q := a.page(c)
		page, err := a.ActionLogs.List(c.Request.Context(), models.ActionLogFilter{
			Type:     c.Query("type"),
			Source:   c.Query("source"),
			Severity: c.Query("severity"),
		}, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Action logs fetched", q, page)
		return nil
	})
}
