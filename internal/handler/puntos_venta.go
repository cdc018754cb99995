package handler

import (
	"net/http"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PuntoVentaHandler struct{ svc service.PuntoVentaService }

func NewPuntoVentaHandler(svc service.PuntoVentaService) *PuntoVentaHandler {
	return &PuntoVentaHandler{svc: svc}
}

// Crear godoc
// @Summary Crea un punto de venta
// @Tags puntos-venta
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearPuntoVentaRequest true "Punto de venta"
// @Success 201 {object} dto.PuntoVentaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/puntos-venta [post]
func (h *PuntoVentaHandler) Crear(c *gin.Context) {
	var req dto.CrearPuntoVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), tenant, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista los puntos de venta activos del tenant
// @Tags puntos-venta
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PuntoVentaResponse
// @Router /v1/puntos-venta [get]
func (h *PuntoVentaHandler) Listar(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), tenant)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary Desactiva un punto de venta (rechaza si tiene caja abierta)
// @Tags puntos-venta
// @Security BearerAuth
// @Param id path string true "ID del punto de venta"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/puntos-venta/{id} [delete]
func (h *PuntoVentaHandler) Desactivar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), tenant, id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
