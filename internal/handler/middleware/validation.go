package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/makkenzo/gdb-api/internal/validation"
)

// BindJSON binds and validates the request body into T before the handler runs. Failures
// abort the chain with a validation error; the handler reads the model with Payload[T].
func BindJSON[T any]() gin.HandlerFunc {
	return bind[T](binding.JSON, validation.BodyField)
}

// BindQuery is BindJSON for the query string.
func BindQuery[T any]() gin.HandlerFunc {
	return bind[T](binding.Query, validation.QueryField)
}

func Payload[T any](c *gin.Context) (T, bool) {
	v, ok := c.Get(payloadKey[T]())
	if !ok {
		var zero T
		return zero, false
	}
	p, ok := v.(T)
	return p, ok
}

func payloadKey[T any]() string {
	var zero T
	return fmt.Sprintf("payload:%T", zero)
}

func bind[T any](b binding.Binding, fallbackField string) gin.HandlerFunc {
	validation.Register()
	return func(c *gin.Context) {
		var payload T
		if err := c.ShouldBindWith(&payload, b); err != nil {
			fields, ok := validation.Translate(err)
			if !ok {
				fields = validation.FieldErrors{}
				fields.Add(fallbackField, err.Error())
			}
			_ = c.Error(validation.NewError(fields))
			c.Abort()
			return
		}

		if fields := rules(&payload); !fields.Empty() {
			_ = c.Error(validation.NewError(fields))
			c.Abort()
			return
		}

		c.Set(payloadKey[T](), payload)
		c.Next()
	}
}

func rules(payload any) validation.FieldErrors {
	if v, ok := payload.(validation.Validatable); ok {
		return v.Validate()
	}
	return nil
}
