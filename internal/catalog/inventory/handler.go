package inventory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/inventory", h.CreateInventory)
	r.GET("/inventory", h.ListInventory)
	r.GET("/inventory/:inventory_id", h.GetInventory)
	r.DELETE("/inventory/:inventory_id", h.DeleteInventory)
}

func (h *Handler) CreateInventory(c *gin.Context) {
	var req CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CreateInventory(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Header("Location", "/inventory/"+strconv.FormatInt(res.InventoryID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetInventory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("inventory_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "inventory_id must be a number"))
		return
	}
	res, err := h.svc.GetInventory(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteInventory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("inventory_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "inventory_id must be a number"))
		return
	}
	if err := h.svc.DeleteInventory(c.Request.Context(), id); err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListInventory(c *gin.Context) {
	var bookID *int64
	if v := c.Query("book_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "book_id must be a number"))
			return
		}
		bookID = &id
	}
	p := Page{
		Limit:  atoiDef(c.Query("limit"), 50),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}
	items, total, err := h.svc.ListInventory(c.Request.Context(), bookID, p)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
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
