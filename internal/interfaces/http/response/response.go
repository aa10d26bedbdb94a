package response

import (
	"github.com/gin-gonic/gin"
)

// 业务错误码
const (
	CodeInvalidParams     = 100001
	CodeNoDocuments       = 100002
	CodeRateLimited       = 100003
	CodeInternal          = 500001
	CodeContractViolation = 500002
	CodeIngestFailed      = 500003
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, message string) {
	c.JSON(httpCode, ErrorResponse{
		Code:    errCode,
		Message: message,
	})
}

// ErrorWithDetail 带详情的错误响应
func ErrorWithDetail(c *gin.Context, httpCode int, errCode int, message, detail string) {
	c.JSON(httpCode, ErrorResponse{
		Code:    errCode,
		Message: message,
		Detail:  detail,
	})
}

// AbortWithError 中止后续 handler 并返回错误
func AbortWithError(c *gin.Context, httpCode int, errCode int, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{
		Code:    errCode,
		Message: message,
	})
}
