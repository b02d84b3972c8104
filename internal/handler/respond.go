package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bancore/transaction-service/internal/apperr"
)

var validate = validator.New()

// errorEnvelope is the uniform error body returned by every endpoint.
type errorEnvelope struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

type validationEnvelope struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Errors    map[string]string `json:"errors"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, errorEnvelope{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
	})
}

// respondFromError maps the error taxonomy to status codes: not-found and
// validation are client errors, unavailability and everything else are server
// errors.
func respondFromError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		respondError(c, http.StatusBadRequest, err.Error())
	case apperr.KindNotFound:
		respondError(c, http.StatusNotFound, err.Error())
	case apperr.KindInsufficientFunds:
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case apperr.KindUnavailable:
		respondError(c, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
// Returns false after writing the error response when the request is bad.
func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		fieldErrors := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fieldErrors[fe.Field()] = validationMessage(fe)
		}
		c.JSON(http.StatusBadRequest, validationEnvelope{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusBadRequest,
			Error:     "Validation Failed",
			Errors:    fieldErrors,
		})
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	default:
		return "Invalid value"
	}
}
