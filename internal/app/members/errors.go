package members

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// LoginFailedMessage is shown for every failed login, whatever the cause.
const LoginFailedMessage = "Login unsuccessful. Please check your credentials."

func errLoginFailed() *Error {
	return &Error{
		Status:  401,
		Code:    "LOGIN_FAILED",
		Message: LoginFailedMessage,
	}
}

func errUsernameTaken() *Error {
	return &Error{
		Status:  409,
		Code:    "USERNAME_TAKEN",
		Message: "That username is already registered.",
		Details: map[string]any{"username": "is already taken"},
	}
}

func errEmailTaken() *Error {
	return &Error{
		Status:  409,
		Code:    "EMAIL_TAKEN",
		Message: "That email address is already registered.",
		Details: map[string]any{"email": "is already registered"},
	}
}
