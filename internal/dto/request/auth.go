package request

// ClientInfo describes the device a session is issued to. It is filled from the HTTP request, never the body.
type ClientInfo struct {
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type RegisterRequest struct {
	ClientInfo
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
}

// LoginRequest accepts either the username or the email as identifier
type LoginRequest struct {
	ClientInfo
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
