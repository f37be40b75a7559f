package checkout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
)

// Customer holds the delivery details captured at checkout.
type Customer struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Address  string `json:"address" validate:"required,max=1000"`
	City     string `json:"city" validate:"required,max=100"`
	Note     string `json:"note,omitempty" validate:"max=2000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Normalize trims every field.
func (c Customer) Normalize() Customer {
	return Customer{
		FullName: strings.TrimSpace(c.FullName),
		Phone:    strings.TrimSpace(c.Phone),
		Address:  strings.TrimSpace(c.Address),
		City:     strings.TrimSpace(c.City),
		Note:     strings.TrimSpace(c.Note),
	}
}

// Validate checks the trimmed fields. Whitespace-only values count as missing.
// Failures carry a field to message map as details.
func (c Customer) Validate() error {
	err := validate.Struct(c.Normalize())
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		switch fieldErr.Tag() {
		case "required":
			details[fieldErr.Field()] = "is required"
		case "max":
			details[fieldErr.Field()] = fmt.Sprintf("must be at most %s characters", fieldErr.Param())
		default:
			details[fieldErr.Field()] = "is invalid"
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "please fill in all required delivery fields").WithDetails(details)
}

// prefill copies delivery details from a registered profile.
func prefill(user *models.User) Customer {
	if user == nil {
		return Customer{}
	}
	return Customer{
		FullName: user.FullName(),
		Phone:    user.Phone,
		Address:  user.Address,
		City:     user.City,
	}
}
