package auth

import (
	"strings"

	"tradekeep/internal/common"

	"github.com/gin-gonic/gin"
)

// UserContextKey 用户上下文键
const UserContextKey = "user"

// UserContext 认证后的用户信息
type UserContext struct {
	UserID string
	Role   string
	Email  string
}

// ExtractTokenFromBearer 从 Authorization 头提取纯令牌
func ExtractTokenFromBearer(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware JWT 认证中间件
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.AbortWithError(c, common.CodeUnauthorized, "缺少认证令牌")
			return
		}

		token := ExtractTokenFromBearer(authHeader)
		if token == "" {
			common.AbortWithError(c, common.CodeUnauthorized, "无效的令牌格式")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			common.AbortWithError(c, common.CodeUnauthorized, "令牌验证失败: "+err.Error())
			return
		}

		// 将用户信息存入上下文
		c.Set(UserContextKey, &UserContext{
			UserID: claims.UserID,
			Role:   claims.Role,
			Email:  claims.Email,
		})

		c.Next()
	}
}

// RequireRole 角色检查中间件
func RequireRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			common.AbortWithError(c, common.CodeUnauthorized, "未认证")
			return
		}

		for _, role := range requiredRoles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		common.AbortWithError(c, common.CodeForbidden, "")
	}
}

// GetUserContext 从 gin 上下文取出用户信息
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	userCtx, ok := value.(*UserContext)
	return userCtx, ok
}
