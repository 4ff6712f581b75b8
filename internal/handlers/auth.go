package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/config"
	"github.com/example/gemmarket/internal/middleware"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/validation"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth   *services.AuthService
	mobile *services.MobileAuthService
	cfg    *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, mobile *services.MobileAuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, mobile: mobile, cfg: cfg}
}

// SignUpEmail registers an email account.
func (h *AuthHandler) SignUpEmail(c *fiber.Ctx) error {
	var payload validation.SignUpPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	// Phone accounts are created through the mobile endpoint only.
	payload.Phone = nil

	session, err := h.auth.SignUpEmail(c.UserContext(), payload)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, session)
	return created(c, session)
}

// SignInEmail opens a session for an email account.
func (h *AuthHandler) SignInEmail(c *fiber.Ctx) error {
	var payload validation.SignInPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	session, err := h.auth.SignInEmail(c.UserContext(), payload)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, session)
	return ok(c, session)
}

// SignOut clears the session cookie. Tokens are stateless and stay valid
// until they expire.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   !h.cfg.IsDevelopment(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ok(c, nil)
}

// GetSession returns the user behind the current session.
func (h *AuthHandler) GetSession(c *fiber.Ctx) error {
	user, signedIn := middleware.CurrentUser(c)
	if !signedIn {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return ok(c, fiber.Map{"user": user})
}

// MobileRegister creates an account from a Myanmar phone number.
func (h *AuthHandler) MobileRegister(c *fiber.Ctx) error {
	var payload validation.MobileRegisterPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	session, err := h.mobile.Register(c.UserContext(), payload)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, session)
	return created(c, session)
}

// MobileLogin signs in with a phone number. Every credential failure gets
// the same response.
func (h *AuthHandler) MobileLogin(c *fiber.Ctx) error {
	var payload validation.MobileLoginPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	session, err := h.mobile.Login(c.UserContext(), payload)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid phone number or password")
	}
	if err != nil {
		return err
	}
	h.setSessionCookie(c, session)
	return ok(c, session)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, session *services.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   !h.cfg.IsDevelopment(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
