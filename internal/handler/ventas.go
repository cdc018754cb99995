package handler

import (
	"net/http"
	"strconv"

	"barbercontrol/internal/apierror"
	"barbercontrol/internal/dto"
	"barbercontrol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentaHandler struct{ svc service.VentaService }

func NewVentaHandler(svc service.VentaService) *VentaHandler { return &VentaHandler{svc: svc} }

// Registrar godoc
// @Summary Registra una venta, pasando por el control de caja
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVentaRequest true "Venta a registrar"
// @Success 201 {object} dto.VentaResponse
// @Success 200 {object} dto.VentaResponse "Decision requerida, venta no registrada"
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/ventas [post]
func (h *VentaHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	usuario, ok := usuarioID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), tenant, usuario, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	if resp.Decision != nil {
		// Not recorded: the caller must decide and retry with an explicit action.
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista las ventas del punto de venta
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param punto_venta_id query string true "ID del punto de venta"
// @Param limit query int false "Cantidad maxima (default 50)"
// @Success 200 {array} dto.VentaResponse
// @Router /v1/ventas [get]
func (h *VentaHandler) Listar(c *gin.Context) {
	pdv, err := uuid.Parse(c.Query("punto_venta_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("punto_venta_id inválido"))
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.Listar(c.Request.Context(), tenant, pdv, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
