package members

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type registerForm struct {
	Username string `form:"username" validate:"required,utf8,excludes=@,min=3,max=100"`
	Email    string `form:"email" validate:"required,utf8,email,max=254"`
	Password string `form:"password" validate:"required,utf8,min=8"`
}
