package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

func init() {
	// Report binding errors with the wire names of fields, not Go names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// respondError maps a service error onto a status and APIError body
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]interface{}, len(verr.Fields))
		for field, messages := range verr.Fields {
			details[field] = messages
		}
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Validation failed", details))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "not found"))
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrAlreadyExists, "already exists"))
	case errors.Is(err, services.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrSelfFollow, "You cannot subscribe to yourself"))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "You can only modify your own recipes"))
	case errors.Is(err, services.ErrLinkGenerationExhausted):
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrLinkGenerationExhausted, "Could not generate a short link, try again"))
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
	_ = c.Error(err)
}

// respondBindError reports request decoding or binding validation problems
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]interface{}, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid request parameters", details))
		return
	}
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body",
		map[string]interface{}{"reason": err.Error()}))
}

// parseID reads a positive integer path parameter, writing 400 when it is not one
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" format"))
		return 0, false
	}
	return uint(id), true
}

// principal returns the caller set by the auth middleware, or an anonymous one
func principal(c *gin.Context) services.Principal {
	var p services.Principal
	if id, ok := c.Get(middleware.UserIDKey); ok {
		p.UserID, _ = id.(uint)
	}
	if role, ok := c.Get(middleware.UserRoleKey); ok {
		p.Role, _ = role.(string)
	}
	return p
}
