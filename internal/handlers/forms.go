package handlers

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports field errors under their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// maxBytes checks a string's length in bytes; bcrypt rejects passwords over 72 bytes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// credentials is the login and registration input, from a form or JSON body.
type credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

func (c *credentials) normalize() {
	c.Username = strings.TrimSpace(c.Username)
}

func (c credentials) Validate() error {
	return validate.Struct(c)
}

// formMessage is the inline page message for a credentials validation error.
func formMessage(err error) string {
	fields := validationFields(err)
	switch {
	case fields["password"] == "maxbytes":
		return msgPasswordTooLong
	case fields["username"] == "max":
		return msgUsernameTooLong
	default:
		return msgMissingFields
	}
}

// screenTimeInput records minutes for the week containing Week (YYYY-MM-DD).
type screenTimeInput struct {
	Week    string `json:"week" validate:"required,datetime=2006-01-02"`
	Minutes int    `json:"minutes" validate:"min=0,max=10080"`
}

func (s screenTimeInput) Validate() error {
	return validate.Struct(s)
}
