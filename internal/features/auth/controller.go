package auth

import (
	common_api "go-lms/internal/common/api"
	"go-lms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{
		AuthService: authService,
	}
}

// Register godoc
// @Summary      Register a new user
// @Description  Register a new user with username, password, and email. The user receives the default learner role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterRequest true "Register Input"
// @Success      201  {object} user.UserView
// @Failure      400  {object} map[string]interface{}
// @Failure      409  {object} map[string]interface{}
// @Router       /api/auth/register [post]
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}

	created, err := ctrl.AuthService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Login godoc
// @Summary      Login
// @Description  Login with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginRequest true "Login Input"
// @Success      200  {object} AuthResponse
// @Failure      400  {object} map[string]interface{}
// @Failure      401  {object} map[string]interface{}
// @Router       /api/auth/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := common_api.ParseBody(c, &req); err != nil {
		return err
	}

	resp, err := ctrl.AuthService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object} user.UserView
// @Failure      401  {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /api/auth/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return err
	}
	me, err := ctrl.AuthService.Me(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(me)
}
