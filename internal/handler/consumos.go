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

type ConsumoHandler struct{ svc service.ConsumoService }

func NewConsumoHandler(svc service.ConsumoService) *ConsumoHandler {
	return &ConsumoHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra un consumo personal de un empleado
// @Tags consumos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarConsumoRequest true "Consumo a registrar"
// @Success 201 {object} dto.ConsumoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/consumos [post]
func (h *ConsumoHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarConsumoRequest
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
		// Nothing recorded: the caller must decide and re-invoke.
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista consumos personales del punto de venta
// @Tags consumos
// @Produce json
// @Security BearerAuth
// @Param punto_venta_id query string true "ID del punto de venta"
// @Param estado query string false "Filtro por estado de liquidacion"
// @Param limit query int false "Cantidad maxima (default 50)"
// @Success 200 {array} dto.ConsumoResponse
// @Router /v1/consumos [get]
func (h *ConsumoHandler) Listar(c *gin.Context) {
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
	resp, err := h.svc.Listar(c.Request.Context(), tenant, pdv, c.Query("estado"), limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Liquidar godoc
// @Summary Liquida manualmente un consumo pendiente
// @Tags consumos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del consumo"
// @Param body body dto.LiquidarConsumoRequest true "Accion de liquidacion"
// @Success 200 {object} dto.ConsumoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/consumos/{id}/liquidar [post]
func (h *ConsumoHandler) Liquidar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.LiquidarConsumoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	admin, ok := usuarioID(c)
	if !ok {
		return
	}
	resp, err := h.svc.LiquidarManual(c.Request.Context(), tenant, admin, id, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
