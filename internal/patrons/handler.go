package patrons

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/patrons", h.CreatePatron)
	r.GET("/patrons", h.ListPatrons)
	r.GET("/patrons/:patron_id", h.GetPatron)
	r.PUT("/patrons/:patron_id", h.UpdatePatron)
	r.DELETE("/patrons/:patron_id", h.DeletePatron)

	// 生涯貸出数（返却済みも含む）
	r.GET("/patrons/:patron_id/rentals/count", h.CountRentals)
}

func (h *Handler) CreatePatron(c *gin.Context) {
	var req CreatePatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CreatePatron(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/patrons/"+strconv.FormatInt(res.PatronID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetPatron(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("patron_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "patron_id must be a number"))
		return
	}
	res, err := h.svc.GetPatron(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdatePatron(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("patron_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "patron_id must be a number"))
		return
	}
	var req UpdatePatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.UpdatePatron(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeletePatron(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("patron_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "patron_id must be a number"))
		return
	}
	if err := h.svc.DeletePatron(c.Request.Context(), id); err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPatrons(c *gin.Context) {
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}
	items, total, err := h.svc.ListPatrons(c.Request.Context(), p)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) CountRentals(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("patron_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "patron_id must be a number"))
		return
	}
	n, err := h.svc.CountLifetimeRentals(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, RentalCountResponse{PatronID: id, Rentals: n})
}

// ---------- helpers ----------

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func apiErr(code Code, msg string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": msg}}
}

func apiErrFrom(err error) gin.H {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, err.Error())
}
