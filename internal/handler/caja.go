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

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Admitir godoc
// @Summary Evalua si una operacion puede proceder contra la caja del punto de venta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AdmitirOperacionRequest true "Operacion a admitir"
// @Success 200 {object} dto.AdmisionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/admitir [post]
func (h *CajaHandler) Admitir(c *gin.Context) {
	var req dto.AdmitirOperacionRequest
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
	resp, err := h.svc.AdmitirOperacion(c.Request.Context(), tenant, usuario, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la caja manualmente con arqueo declarado
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CierreManualRequest true "Arqueo declarado"
// @Success 200 {object} dto.CierreResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CierreManualRequest
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
	resp, err := h.svc.CerrarManual(c.Request.Context(), tenant, &usuario, &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Estado godoc
// @Summary Devuelve el estado actual de la caja del punto de venta
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del punto de venta"
// @Success 200 {object} dto.EstadoCajaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/puntos-venta/{id}/caja [get]
func (h *CajaHandler) Estado(c *gin.Context) {
	pdv, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de punto de venta inválido"))
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.EstadoCaja(c.Request.Context(), tenant, pdv)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cierres godoc
// @Summary Lista los cierres de caja del punto de venta
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del punto de venta"
// @Param limit query int false "Cantidad maxima (default 30)"
// @Success 200 {array} dto.CierreResponse
// @Router /v1/puntos-venta/{id}/cierres [get]
func (h *CajaHandler) Cierres(c *gin.Context) {
	pdv, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de punto de venta inválido"))
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	resp, err := h.svc.ListarCierres(c.Request.Context(), tenant, pdv, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle godoc
// @Summary Devuelve un cierre de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Success 200 {object} dto.CierreResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cierres/{id} [get]
func (h *CajaHandler) Detalle(c *gin.Context) {
	cierreID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de cierre inválido"))
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerCierre(c.Request.Context(), tenant, cierreID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenPDF godoc
// @Summary Descarga el resumen del cierre en PDF
// @Tags caja
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID del cierre"
// @Success 200 {file} file
// @Failure 404 {object} apierror.APIError
// @Router /v1/cierres/{id}/pdf [get]
func (h *CajaHandler) ResumenPDF(c *gin.Context) {
	cierreID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de cierre inválido"))
		return
	}
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	path, err := h.svc.ResumenCierrePDF(c.Request.Context(), tenant, cierreID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.FileAttachment(path, "cierre_"+cierreID.String()+".pdf")
}

// Barrido godoc
// @Summary Ejecuta el barrido de cierres automaticos del tenant
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BarridoCierresResponse
// @Router /v1/caja/barrido-cierres [post]
func (h *CajaHandler) Barrido(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	resp, err := h.svc.EjecutarBarridoCierres(c.Request.Context(), tenant)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
