package handler

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"sync"

	"bloodalert/internal/domain"
	"bloodalert/internal/repository"
	"bloodalert/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of a 422 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// RegisterValidators makes validation errors report JSON field names and
// adds the bloodgroup tag. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(registerValidators)
}

func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.BloodGroups, strings.ToUpper(fl.Field().String()))
	})
}

// bind decodes the JSON body into req, answering 422 on failure.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "validation failed", "fields": fields})
		return false
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid request body"})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "bloodgroup":
		return "must be a valid blood group"
	default:
		return "is invalid"
	}
}

// fail maps a service or repository error to the status taxonomy.
func fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	case errors.Is(err, service.ErrInvalidCreds):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	default:
		log.Printf("[API] %s failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": op + " failed"})
	}
}
