package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func JSON(c *gin.Context, status int, data gin.H) {
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// FieldError reports a single-field failure in the same shape the
// validation layer produces, e.g. an unknown email on /forgot-password.
func FieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": message,
		"errors":  gin.H{field: []string{message}},
	})
}

// ValidationFailed renders a 422 with one message list per failing field.
func ValidationFailed(c *gin.Context, err error) {
	fieldErrs := make(map[string][]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := snakeCase(fe.Field())
			fieldErrs[field] = append(fieldErrs[field], fieldMessage(field, fe))
		}
	}
	if len(fieldErrs) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid."})
		return
	}
	var first string
	for _, msgs := range fieldErrs {
		if first == "" || msgs[0] < first {
			first = msgs[0]
		}
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": first,
		"errors":  fieldErrs,
	})
}

// snakeCase maps the struct field name back to its wire name, e.g.
// NewPassword -> new_password.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && (runes[i-1] < 'A' || runes[i-1] > 'Z')
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldMessage(field string, fe validator.FieldError) string {
	name := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}
