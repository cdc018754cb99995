package handler

import (
	"errors"
	"net/http"
	"reflect"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// renderError maps domain errors to HTTP responses. Coded errors carry their
// stable code to the client; everything else degrades to a generic message.
func renderError(c *gin.Context, err error) {
	var coded *apierror.Coded
	if errors.As(err, &coded) {
		c.JSON(statusForCode(coded.Code), &apierror.APIError{Code: coded.Code, Detail: coded.Detail})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
		return
	}
	c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
}

func statusForCode(code string) int {
	switch code {
	case "CAJA_CERRADA_BLOQUEADA", "FUERA_CAJA_DESHABILITADO",
		"CIERRE_CONSUMOS_PENDIENTES_BLOQUEADO", "PUNTO_VENTA_TIENE_CAJA_ABIERTA",
		"CAJA_YA_CERRADA", "CONSUMO_YA_LIQUIDADO":
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// tenantID extracts the tenant from the JWT claims. Every protected route
// operates inside exactly one tenant.
func tenantID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.TenantID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return uuid.Nil, false
	}
	return id, true
}

func usuarioID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return uuid.Nil, false
	}
	return id, true
}
