package handler

import (
	"net/http"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConfiguracionHandler struct{ svc service.ConfigService }

func NewConfiguracionHandler(svc service.ConfigService) *ConfiguracionHandler {
	return &ConfiguracionHandler{svc: svc}
}

// Resolver godoc
// @Summary Devuelve la configuracion operativa resuelta para un punto de venta
// @Tags configuracion
// @Produce json
// @Security BearerAuth
// @Param punto_venta_id query string false "ID del punto de venta (vacio = ambito tenant)"
// @Success 200 {object} service.ConfiguracionOperativa
// @Router /v1/configuracion [get]
func (h *ConfiguracionHandler) Resolver(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var pdv *uuid.UUID
	if raw := c.Query("punto_venta_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("punto_venta_id inválido"))
			return
		}
		pdv = &id
	}
	c.JSON(http.StatusOK, h.svc.Resolver(c.Request.Context(), tenant, pdv))
}

// Guardar godoc
// @Summary Guarda el documento de overrides para un ambito
// @Tags configuracion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.GuardarConfiguracionRequest true "Overrides por ambito"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/configuracion [put]
func (h *ConfiguracionHandler) Guardar(c *gin.Context) {
	var req dto.GuardarConfiguracionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	var pdv *uuid.UUID
	if req.PuntoVentaID != nil && *req.PuntoVentaID != "" {
		id, err := uuid.Parse(*req.PuntoVentaID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("punto_venta_id inválido"))
			return
		}
		pdv = &id
	}
	if err := h.svc.GuardarOverrides(c.Request.Context(), tenant, pdv, req.Overrides); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
