package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"multipos/internal/apierror"
	"multipos/internal/apperr"
	"multipos/internal/middleware"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is exposed to tags as its sign only, so min=0 works
	// without a lossy float conversion. Scale and magnitude are checked on the
	// decimal by stock.ValidateMoney in the services.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			return v.Sign()
		}
		return nil
	}, decimal.Decimal{})

	// Report JSON field names instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds the JSON body and runs the validator tags. On failure
// it writes the response and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// parseUUIDParam reads a path parameter as a UUID, writing 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// optionalShopQuery parses ?shop_id=. An empty value means all shops.
func optionalShopQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("shop_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid shop_id"))
		return nil, false
	}
	return &id, true
}

// writeError maps domain errors to HTTP responses. Anything untyped is a 500
// whose cause is logged but never returned.
func writeError(c *gin.Context, err error) {
	var (
		ve  *apperr.ValidationError
		ise *apperr.InsufficientStockError
		dke *apperr.DuplicateKeyError
		nfe *apperr.NotFoundError
		ue  *apperr.UnauthorizedError
	)
	switch {
	case errors.As(err, &ise):
		c.JSON(http.StatusBadRequest, apierror.NewInsufficientStock(
			ise.ProductID.String(), ise.ShopID.String(), ise.Requested, ise.Available))
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, apierror.New(ve.Error()))
	case errors.As(err, &dke):
		c.JSON(http.StatusConflict, apierror.New(dke.Error()))
	case errors.As(err, &nfe):
		c.JSON(http.StatusNotFound, apierror.New(nfe.Error()))
	case errors.As(err, &ue):
		c.JSON(http.StatusUnauthorized, apierror.New(ue.Error()))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
