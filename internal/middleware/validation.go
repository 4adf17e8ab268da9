package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/vacina-dashboard/pkg/httputil"
	pkgvalidator "github.com/jwalitptl/vacina-dashboard/pkg/validator"
)

const MsgInvalidData = "Dados inválidos"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

// DefaultValidationConfig carries the registry's field rules and their
// pt-BR messages.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators:    pkgvalidator.Rules(),
		CustomErrorMessages: pkgvalidator.Messages(),
	}
}

// Validation installs the custom rules on gin's validator and answers 400
// with one message per field when a handler reports validator errors.
func Validation(config ValidationConfig) gin.HandlerFunc {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		for tag, fn := range config.CustomValidators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}

		// Report fields by their JSON names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var fields []ValidationError
		for _, e := range c.Errors {
			var errs validator.ValidationErrors
			if !errors.As(e.Err, &errs) {
				continue
			}
			for _, fe := range errs {
				msg := config.CustomErrorMessages[fe.Tag()]
				if msg == "" {
					msg = fe.Error()
				}
				fields = append(fields, ValidationError{Field: fe.Field(), Message: msg})
			}
		}

		if len(fields) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, &httputil.Response{
				Status:  "error",
				Message: MsgInvalidData,
				Data:    fields,
			})
		}
	}
}
