package contactsdk

import "time"

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error            string `json:"error"             example:"not_found"`
	ErrorDescription string `json:"error_description" example:"resource not found"`
}

// ValidationErrorResponse is returned with 400 when input fails validation.
type ValidationErrorResponse struct {
	Code    string            `json:"code"              example:"validation_error"`
	Message string            `json:"message"           example:"validation failed for some fields"`
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Auth
// ============================================================================

type RegisterRequest struct {
	Email    string `json:"email"    example:"ada@example.com"        validate:"required,email,max=254"`
	Username string `json:"username" example:"ada"                    validate:"required,min=3,max=32,username"`
	Password string `json:"password" example:"correct horse battery" validate:"required,min=8,max=128"`
}

// LoginRequest mirrors the OAuth2 password form: username carries the email.
type LoginRequest struct {
	Username string `json:"username" example:"ada@example.com"`
	Password string `json:"password" example:"correct horse battery"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// EmailRequest starts a flow keyed by email (resend verification, reset).
type EmailRequest struct {
	Email string `json:"email" example:"ada@example.com"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"bearer"`
	ExpiresIn    int    `json:"expires_in" example:"1800"`
}

type MessageResponse struct {
	Message string `json:"message" example:"email verified"`
}

// ============================================================================
// Users
// ============================================================================

type UserResponse struct {
	ID        string    `json:"id"                   example:"01JAY4F1T6D3K5Q8Z2M0N7B9XC"`
	Email     string    `json:"email"                example:"ada@example.com"`
	Username  string    `json:"username"             example:"ada"`
	Role      string    `json:"role"                 example:"user"`
	Verified  bool      `json:"verified"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ChangeRoleRequest struct {
	Email string `json:"email" example:"ada@example.com"`
	Role  string `json:"role"  example:"admin"`
}

// ============================================================================
// Contacts
// ============================================================================

// ContactRequest creates or fully replaces a contact. Birthday is
// YYYY-MM-DD or empty.
type ContactRequest struct {
	FirstName string `json:"first_name"         example:"Grace"`
	LastName  string `json:"last_name"          example:"Hopper"`
	Email     string `json:"email"              example:"grace@example.com"`
	Phone     string `json:"phone"              example:"+1 555 0100"`
	Birthday  string `json:"birthday,omitempty" example:"1906-12-09"`
	Note      string `json:"note,omitempty"`
}

// ContactPatch updates only the fields that are set. An empty Birthday or
// Note clears it.
type ContactPatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Birthday  *string `json:"birthday,omitempty"`
	Note      *string `json:"note,omitempty"`
}

type ContactResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  string    `json:"birthday,omitempty" example:"1906-12-09"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactPage is one page of GET /v1/contacts. NextCursor is empty on the
// last page.
type ContactPage struct {
	Contacts   []ContactResponse `json:"contacts"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ContactList is an unpaged result (search, birthdays).
type ContactList struct {
	Contacts []ContactResponse `json:"contacts"`
}

// ============================================================================
// Bootstrap
// ============================================================================

// BootstrapRequest creates the first, already verified, admin account.
type BootstrapRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type BootstrapResponse struct {
	UserID string `json:"user_id"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is served by /livez and /readyz (the latter adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"            example:"ok"`
	Uptime  string        `json:"uptime,omitempty"  example:"1h23m45s"`
	Version string        `json:"version,omitempty" example:"v0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database" example:"ok"`
	Cache    string `json:"cache"    example:"ok"`
}
