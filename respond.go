package main

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"custdesk/pkg/logger"
	"custdesk/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const validationFailed = "request validation failed"

// fieldError is one entry of a 400 response's details.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var setupValidatorOnce sync.Once

// setupValidator makes gin's validator report JSON field names.
func setupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

func validationDetails(verrs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return out
}

// fieldPath drops the struct name from the namespace: "data_sheet.description".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	case "gt", "min":
		return "Must be greater than " + fe.Param() + "."
	}
	return "Failed on the '" + fe.Tag() + "' rule."
}

func badRequest(c *gin.Context, details ...fieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validationFailed, "details": details})
}

// bindJSON binds the body into obj, writing the 400 itself on failure.
func bindJSON(c *gin.Context, obj any) bool {
	return bindBody(c, obj, false)
}

// bindOptionalJSON is bindJSON that accepts an empty body.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	return bindBody(c, obj, true)
}

func bindBody(c *gin.Context, obj any, optional bool) bool {
	if optional && (c.Request.Body == nil || c.Request.Body == http.NoBody) {
		return true
	}
	err := c.ShouldBindJSON(obj)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		badRequest(c, validationDetails(verrs)...)
		return false
	}
	badRequest(c, fieldError{Field: "body", Message: err.Error()})
	return false
}

// pathID parses :id. A non-numeric id is a validation error.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fieldError{Field: "id", Message: "A valid integer is required."})
		return 0, false
	}
	return uint(id), true
}

// respondError maps store errors to statuses; anything unknown is a logged 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDataSheetTaken):
		badRequest(c, fieldError{Field: "data_sheet", Message: err.Error()})
	default:
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
