package handlers

import (
	"net/http"

	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 統一錯誤回應
// CustomError 依其狀態碼與代碼輸出，其他錯誤一律 500
func RespondError(c *gin.Context, err error) {
	if ce, ok := common.AsCustomError(err); ok {
		resp := common.ErrorResponse{
			Code:    ce.Code,
			Message: ce.Message,
		}
		if ce.Err != nil {
			resp.Details = ce.Err.Error()
		}
		c.JSON(ce.Status, resp)
		return
	}

	common.LogError("未分類的處理錯誤",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "服務器內部錯誤",
	})
}
