package auth

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jrsteele09/regulus-console/api"
)

// UserType is the operator's role in the monitoring organisation.
type UserType string

const (
	UserTypeComplianceManager UserType = "compliance_manager"
	UserTypeAdmin             UserType = "admin"
)

// DefaultOrganizationID is preselected for new signups.
const DefaultOrganizationID = "ORG-0001"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is an operator account as returned by the API.
type User struct {
	ID             string        `json:"user_id"`
	OrganizationID string        `json:"organization_id"`
	Username       string        `json:"username"`
	FullName       string        `json:"full_name"`
	Email          string        `json:"email"`
	UserType       UserType      `json:"user_type"`
	IsActive       bool          `json:"is_active"`
	CreatedDate    api.Timestamp `json:"created_date"`
	UpdatedDate    api.Timestamp `json:"updated_date"`
	CreatedBy      string        `json:"created_by,omitempty"`
	UpdatedBy      string        `json:"updated_by,omitempty"`
}

// SignupRequest registers a new operator. A nil IsActive leaves the server default.
type SignupRequest struct {
	OrganizationID string   `json:"organization_id"`
	Username       string   `json:"username"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	UserType       UserType `json:"user_type"`
	Password       string   `json:"password"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// FieldErrors maps a signup field to the reason it was rejected.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+f[field])
	}
	return strings.Join(parts, "; ")
}

func (f FieldErrors) Unwrap() error {
	return InvalidSignupErr
}

// Validate checks every field and reports all failures at once.
func (r SignupRequest) Validate() error {
	problems := FieldErrors{}
	if strings.TrimSpace(r.OrganizationID) == "" {
		problems["organization_id"] = "Organization ID is required."
	}
	if strings.TrimSpace(r.Username) == "" {
		problems["username"] = "Username is required."
	}
	if strings.TrimSpace(r.FullName) == "" {
		problems["full_name"] = "Full name is required."
	}
	switch {
	case strings.TrimSpace(r.Email) == "":
		problems["email"] = "Email is required."
	case !emailPattern.MatchString(r.Email):
		problems["email"] = "Enter a valid email address."
	}
	if strings.TrimSpace(string(r.UserType)) == "" {
		problems["user_type"] = "User type is required."
	}
	if strings.TrimSpace(r.Password) == "" {
		problems["password"] = "Password is required."
	} else if err := ValidatePasswordStrength(r.Password); err != nil {
		problems["password"] = err.Error()
	}

	if len(problems) > 0 {
		return problems
	}
	return nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	return nil
}
