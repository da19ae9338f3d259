package common

import "time"

// ============================================================================
// 通用请求类型
// ============================================================================

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `json:"page" form:"page" binding:"omitempty,min=1"`           // 页码，从1开始
	PageSize int `json:"page_size" form:"page_size" binding:"omitempty,min=1"` // 每页数量
}

// DefaultPagination 返回默认分页参数
func DefaultPagination() PaginationRequest {
	return PaginationRequest{
		Page:     1,
		PageSize: 20,
	}
}

// GetOffset 计算数据库查询的偏移量
func (p PaginationRequest) GetOffset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.GetPageSize()
}

// GetPageSize 获取每页数量，提供默认值
func (p PaginationRequest) GetPageSize() int {
	if p.PageSize < 1 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// ============================================================================
// 通用响应类型
// ============================================================================

// 响应状态标识
// fail 表示调用方可修正的失败（4xx），error 表示服务端错误（5xx）
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// APIResponse 统一API响应格式
type APIResponse struct {
	Status    string `json:"status"`              // success, fail, error
	Data      any    `json:"data,omitempty"`      // 响应数据
	Error     string `json:"error,omitempty"`     // 错误信息
	ErrorCode int    `json:"errorCode,omitempty"` // 业务错误码
}

// SuccessResponse 成功响应
func SuccessResponse(data any) APIResponse {
	return APIResponse{
		Status: StatusSuccess,
		Data:   data,
	}
}

// FailResponse 调用方错误响应
func FailResponse(code int, message string) APIResponse {
	return APIResponse{
		Status:    StatusFail,
		Error:     message,
		ErrorCode: code,
	}
}

// ErrResponse 服务端错误响应
func ErrResponse(code int, message string) APIResponse {
	return APIResponse{
		Status:    StatusError,
		Error:     message,
		ErrorCode: code,
	}
}

// PaginationMeta 分页元信息
type PaginationMeta struct {
	Page       int   `json:"page"`        // 当前页码
	PageSize   int   `json:"page_size"`   // 每页数量
	Total      int64 `json:"total"`       // 总记录数
	TotalPages int   `json:"total_pages"` // 总页数
}

// NewPaginationMeta 创建分页元信息
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	meta := PaginationMeta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

// ListResponse 列表响应（包含分页信息）
type ListResponse struct {
	Items      any            `json:"items"`      // 数据列表
	Pagination PaginationMeta `json:"pagination"` // 分页信息
}

// NewListResponse 创建列表响应
func NewListResponse(items any, page, pageSize int, total int64) ListResponse {
	return ListResponse{
		Items:      items,
		Pagination: NewPaginationMeta(page, pageSize, total),
	}
}

// ============================================================================
// 业务错误码定义
// ============================================================================

const (
	// 通用错误码 (1000-1999)
	CodeInvalidRequest     = 1000 // 请求参数错误
	CodeUnauthorized       = 1001 // 未授权
	CodeForbidden          = 1002 // 禁止访问
	CodeNotFound           = 1003 // 资源不存在
	CodeConflict           = 1004 // 资源冲突
	CodeInternalError      = 1005 // 内部错误
	CodeServiceUnavailable = 1006 // 服务不可用

	// 用户相关错误码 (2000-2099)
	CodeUserNotFound = 2000 // 用户不存在
	CodeUserDisabled = 2001 // 用户已禁用

	// 工作流相关错误码 (5000-5099)
	CodeTemplateNotFound   = 5000 // 工作流模板不存在
	CodeTemplateInvalid    = 5001 // 工作流模板定义无效
	CodeTemplateInUse      = 5002 // 模板已有运行中实例，禁止修改阶段
	CodeInstanceNotFound   = 5010 // 工作流实例不存在
	CodeInstanceTerminal   = 5011 // 工作流实例已结束
	CodeStageMismatch      = 5012 // 阶段已变更，提交的审批已过期
	CodeStageConflict      = 5013 // 并发审批冲突，实例已被其他审批推进
	CodeNotStageAssignee   = 5014 // 当前用户不是该阶段的审批人
	CodeDuplicateDecision  = 5015 // 同一阶段重复提交审批
	CodeStageConfigInvalid = 5016 // 阶段配置无效

	// 内容与发布相关错误码 (6000-6099)
	CodeContentNotFound    = 6000 // 内容不存在
	CodeNoValidPlatform    = 6001 // 未指定任何发布平台
	CodeScheduleInPast     = 6010 // 计划发布时间必须晚于当前时间
	CodeScheduleNotFound   = 6011 // 发布计划不存在
	CodeScheduleNotPending = 6012 // 发布计划已执行或已取消
	CodePublishFailed      = 6020 // 所有平台发布均失败
	CodePostRecordNotFound = 6021 // 发布记录不存在

	// 平台适配器相关错误码 (7000-7099)
	CodePlatformUnknown      = 7000 // 不支持的平台
	CodePlatformUnconfigured = 7001 // 平台凭证未配置
	CodeDeleteUnsupported    = 7002 // 平台不支持删除已发布内容
	CodeRemoteDeleteFailed   = 7003 // 远端删除失败
)

// ErrorMessages 错误码对应的默认消息
var ErrorMessages = map[int]string{
	CodeInvalidRequest:     "请求参数错误",
	CodeUnauthorized:       "未授权，请先登录",
	CodeForbidden:          "无权限访问",
	CodeNotFound:           "资源不存在",
	CodeConflict:           "资源冲突",
	CodeInternalError:      "系统内部错误",
	CodeServiceUnavailable: "服务暂不可用",

	CodeUserNotFound: "用户不存在",
	CodeUserDisabled: "用户已禁用",

	CodeTemplateNotFound:   "工作流模板不存在",
	CodeTemplateInvalid:    "工作流模板定义无效",
	CodeTemplateInUse:      "模板存在运行中的实例，禁止修改阶段定义",
	CodeInstanceNotFound:   "工作流实例不存在",
	CodeInstanceTerminal:   "工作流实例已结束，无法提交审批",
	CodeStageMismatch:      "实例当前阶段已变更，请刷新后重试",
	CodeStageConflict:      "该阶段已被其他审批人推进",
	CodeNotStageAssignee:   "您不是该阶段的审批人",
	CodeDuplicateDecision:  "您已对该阶段提交过审批意见",
	CodeStageConfigInvalid: "阶段配置无效",

	CodeContentNotFound:    "内容不存在",
	CodeNoValidPlatform:    "未指定任何发布平台",
	CodeScheduleInPast:     "计划发布时间必须晚于当前时间",
	CodeScheduleNotFound:   "发布计划不存在",
	CodeScheduleNotPending: "发布计划已执行或已取消",
	CodePublishFailed:      "所有平台发布均失败",
	CodePostRecordNotFound: "发布记录不存在",

	CodePlatformUnknown:      "不支持的发布平台",
	CodePlatformUnconfigured: "平台凭证未配置",
	CodeDeleteUnsupported:    "该平台不支持删除已发布内容",
	CodeRemoteDeleteFailed:   "远端删除失败",
}

// GetErrorMessage 获取错误码对应的消息
func GetErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "未知错误"
}

// ============================================================================
// 通用业务错误类型
// ============================================================================

// BusinessError 业务错误
type BusinessError struct {
	Code    int    // 错误码
	Message string // 错误信息
}

// Error 实现error接口
func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError 创建业务错误
func NewBusinessError(code int, message string) *BusinessError {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

// NewBusinessErrorWithCode 根据错误码创建业务错误
func NewBusinessErrorWithCode(code int) *BusinessError {
	return NewBusinessError(code, GetErrorMessage(code))
}

// ============================================================================
// 日期范围
// ============================================================================

// DateRange 日期范围过滤参数
type DateRange struct {
	Start time.Time `json:"start"` // 开始时间
	End   time.Time `json:"end"`   // 结束时间
}
