package platform

import "tradekeep/pkg/socialiface"

// 重新导出 socialiface 包的类型
// 适配器子包只依赖 pkg/socialiface，避免子包对父包的依赖
type (
	Post          = socialiface.Post
	PublishResult = socialiface.PublishResult
	AccountStatus = socialiface.AccountStatus
	Adapter       = socialiface.Adapter
)

// ErrDeleteUnsupported 重新导出
var ErrDeleteUnsupported = socialiface.ErrDeleteUnsupported

// 支持的平台标识（封闭集合，新平台必须在注册表中显式接入）
const (
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformInstagram = "instagram"
	PlatformEmail     = "email"
)
