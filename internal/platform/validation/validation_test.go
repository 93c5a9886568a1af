package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupForm struct {
	Username string `form:"username" validate:"required,utf8,excludes=@,min=3,max=10"`
	Email    string `form:"email" validate:"required,email"`
	When     string `form:"meal_date" validate:"required,datetime=2006-01-02"`
}

func TestStruct_Valid(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Struct(signupForm{Username: "alice", Email: "a@example.com", When: "2024-01-02"}))
}

func TestStruct_ReportsFormFieldNames(t *testing.T) {
	t.Parallel()

	got := Struct(signupForm{Username: "al", Email: "Alice <a@example.com>", When: "02/01/2024"})
	assert.Equal(t, map[string]any{
		"username":  "must be at least 3 characters",
		"email":     "must be a valid email address",
		"meal_date": "must be a date in YYYY-MM-DD format",
	}, got)
}

func TestStruct_RequiredWinsOverOtherRules(t *testing.T) {
	t.Parallel()

	got := Struct(signupForm{})
	assert.Equal(t, "is required", got["username"])
	assert.Equal(t, "is required", got["email"])
	assert.Equal(t, "is required", got["meal_date"])
}

func TestStruct_RejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	got := Struct(signupForm{Username: "carol\xff", Email: "a@example.com", When: "2024-01-02"})
	assert.Equal(t, map[string]any{"username": "must be valid UTF-8 text"}, got)
}

func TestStruct_Excludes(t *testing.T) {
	t.Parallel()

	got := Struct(signupForm{Username: "bob@home", Email: "a@example.com", When: "2024-01-02"})
	assert.Equal(t, map[string]any{"username": `must not contain "@"`}, got)
}
