package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// httpStatusFor 业务错误码到 HTTP 状态码的映射
func httpStatusFor(code int) int {
	switch code {
	case CodeInvalidRequest, CodeTemplateInvalid, CodeStageConfigInvalid,
		CodeNoValidPlatform, CodeScheduleInPast, CodePlatformUnknown,
		CodeDeleteUnsupported:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotStageAssignee:
		return http.StatusForbidden
	case CodeNotFound, CodeUserNotFound, CodeTemplateNotFound, CodeInstanceNotFound,
		CodeContentNotFound, CodeScheduleNotFound, CodePostRecordNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeTemplateInUse, CodeInstanceTerminal, CodeStageMismatch,
		CodeStageConflict, CodeDuplicateDecision, CodeScheduleNotPending:
		return http.StatusConflict
	case CodeServiceUnavailable, CodePlatformUnconfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ResponseSuccess 返回成功响应
func ResponseSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse(data))
}

// ResponseCreated 返回创建成功响应（201）
func ResponseCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, SuccessResponse(data))
}

// ResponseList 返回分页列表响应
func ResponseList(c *gin.Context, items any, total int64, req *PaginationRequest) {
	if req == nil {
		defaultReq := DefaultPagination()
		req = &defaultReq
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	c.JSON(http.StatusOK, SuccessResponse(NewListResponse(items, page, req.GetPageSize(), total)))
}

// ResponseError 返回错误响应
// 4xx 使用 fail 状态，5xx 使用 error 状态
func ResponseError(c *gin.Context, code int, message string) {
	if message == "" {
		message = GetErrorMessage(code)
	}
	httpStatus := httpStatusFor(code)
	if httpStatus < http.StatusInternalServerError {
		c.JSON(httpStatus, FailResponse(code, message))
		return
	}
	c.JSON(httpStatus, ErrResponse(code, message))
}

// ResponseFromError 根据错误类型返回响应
// 业务错误按其错误码映射，其余一律视为内部错误
func ResponseFromError(c *gin.Context, err error) {
	var bizErr *BusinessError
	if errors.As(err, &bizErr) {
		ResponseError(c, bizErr.Code, bizErr.Message)
		return
	}
	ResponseError(c, CodeInternalError, "")
}

// AbortWithError 中断并返回错误
func AbortWithError(c *gin.Context, code int, message string) {
	ResponseError(c, code, message)
	c.Abort()
}

// ResponseBadRequest 返回参数错误响应
func ResponseBadRequest(c *gin.Context, message string) {
	ResponseError(c, CodeInvalidRequest, message)
}

// ResponseUnauthorized 返回未认证响应
func ResponseUnauthorized(c *gin.Context, message string) {
	ResponseError(c, CodeUnauthorized, message)
}

// ResponseForbidden 返回无权限响应
func ResponseForbidden(c *gin.Context, message string) {
	ResponseError(c, CodeForbidden, message)
}

// ResponseNotFound 返回资源不存在响应
func ResponseNotFound(c *gin.Context, message string) {
	ResponseError(c, CodeNotFound, message)
}

// ResponseServerError 返回服务器错误响应
func ResponseServerError(c *gin.Context, message string) {
	ResponseError(c, CodeInternalError, message)
}
