package handler

import (
	"net/http"

	"simplelink/internal/model"
	"simplelink/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 包含认证相关的处理器
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler 创建一个新的 AuthHandler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginRequest 定义了登录请求的结构体
type LoginRequest struct {
	Email    string `json:"email" example:"admin@example.com"`
	Password string `json:"password" example:"secret1"`
}

// RegisterRequest 定义了注册请求的结构体；首个用户之后须携带管理员令牌
type RegisterRequest struct {
	Email      string `json:"email" example:"newuser@example.com"`
	Password   string `json:"password" example:"password123"`
	AdminToken string `json:"admin_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// UserResponse 返回给前端的用户信息
type UserResponse struct {
	ID      uint   `json:"id" example:"1"`
	Email   string `json:"email" example:"admin@example.com"`
	IsAdmin bool   `json:"is_admin" example:"true"`
}

// AuthResponse 定义了认证成功后的响应
type AuthResponse struct {
	Token string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  UserResponse `json:"user"`
}

// FirstUserResponse 是否尚无用户
type FirstUserResponse struct {
	IsFirstUser bool `json:"isFirstUser" example:"true"`
}

func newAuthResponse(token string, user *model.User) AuthResponse {
	return AuthResponse{
		Token: token,
		User:  UserResponse{ID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin},
	}
}

// Login godoc
// @Summary 用户登录
// @Description 使用邮箱和密码获取 JWT 令牌
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   account  body   LoginRequest  true  "登录凭据"
// @Success 200 {object} AuthResponse "成功响应"
// @Failure 400 {object} ErrorResponse "请求无效"
// @Failure 401 {object} ErrorResponse "认证失败"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newAuthResponse(res.Token, res.User))
}

// Register godoc
// @Summary 用户注册
// @Description 首个用户无需令牌并成为管理员；之后须提供管理员的 JWT
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   account  body   RegisterRequest  true  "注册信息"
// @Success 201 {object} AuthResponse "成功响应"
// @Failure 400 {object} ErrorResponse "请求无效"
// @Failure 403 {object} ErrorResponse "需要管理员令牌"
// @Failure 409 {object} ErrorResponse "邮箱已注册"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		AdminToken: req.AdminToken,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newAuthResponse(res.Token, res.User))
}

// CheckFirstUser godoc
// @Summary 是否首个用户
// @Description 尚无用户时前端展示管理员初始化流程
// @Tags Auth
// @Produce  json
// @Success 200 {object} FirstUserResponse
// @Router /api/auth/check-first-user [get]
func (h *AuthHandler) CheckFirstUser(c *gin.Context) {
	first, err := h.auth.CheckFirstUser(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, FirstUserResponse{IsFirstUser: first})
}
