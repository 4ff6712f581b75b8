package validation

import (
	"strings"

	"github.com/example/gemmarket/internal/models"
)

// ProfilePayload is what a user may change about their own account.
type ProfilePayload struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

func (p ProfilePayload) Validate() error {
	var errs Errors
	if p.Name != nil && trimmed(p.Name) == "" {
		errs.add("name must not be empty")
	}
	validateName(&errs, p.Name)
	return errs.Err()
}

func (p ProfilePayload) Updates() map[string]any {
	updates := map[string]any{}
	putString(updates, "name", p.Name)
	putString(updates, "address", p.Address)
	putString(updates, "city", p.City)
	return updates
}

// AdminUserPayload is the admin edit schema of an account.
type AdminUserPayload struct {
	ProfilePayload
	Role   *string `json:"role"`
	Points *int    `json:"points"`
}

func (p AdminUserPayload) Validate() error {
	var errs Errors
	if err := p.ProfilePayload.Validate(); err != nil {
		errs = append(errs, err.(Errors)...)
	}
	if p.Role != nil && !oneOf(*p.Role, models.RoleUser, models.RoleAdmin) {
		errs.add("role must be user or admin")
	}
	if p.Points != nil && *p.Points < 0 {
		errs.add("points must not be negative")
	}
	return errs.Err()
}

func (p AdminUserPayload) Updates() map[string]any {
	updates := p.ProfilePayload.Updates()
	putString(updates, "role", p.Role)
	if p.Points != nil {
		updates["points"] = *p.Points
	}
	return updates
}

// SignUpPayload is the email registration schema.
type SignUpPayload struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
}

func (p SignUpPayload) Validate() error {
	var errs Errors
	if strings.TrimSpace(p.Name) == "" {
		errs.add("name is required")
	}
	if !validEmail(p.Email) {
		errs.add("a valid email is required")
	}
	validatePassword(&errs, p.Password)
	return errs.Err()
}

// SignInPayload is the email login schema.
type SignInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p SignInPayload) Validate() error {
	var errs Errors
	if strings.TrimSpace(p.Email) == "" {
		errs.add("email is required")
	}
	if p.Password == "" {
		errs.add("password is required")
	}
	return errs.Err()
}

// MobileRegisterPayload is the phone registration schema.
type MobileRegisterPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

func (p MobileRegisterPayload) Validate() error {
	var errs Errors
	if strings.TrimSpace(p.Phone) == "" {
		errs.add("phone is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.add("name is required")
	}
	validatePassword(&errs, p.Password)
	return errs.Err()
}

// MobileLoginPayload is the phone login schema.
type MobileLoginPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (p MobileLoginPayload) Validate() error {
	var errs Errors
	if strings.TrimSpace(p.Phone) == "" {
		errs.add("phone is required")
	}
	if p.Password == "" {
		errs.add("password is required")
	}
	return errs.Err()
}

func validatePassword(errs *Errors, password string) {
	if len(password) < 8 {
		errs.add("password must be at least 8 characters")
	}
	if len(password) > 72 {
		errs.add("password must be at most 72 characters")
	}
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t") && strings.Contains(email[at:], ".")
}
