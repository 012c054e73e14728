package rentals

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 1. 貸出リソース
	r.POST("/rentals", h.CreateRental)
	r.GET("/rentals", h.ListRentals)
	r.GET("/rentals/:rental_key", h.GetRental)
	r.PUT("/rentals/:rental_key", h.UpdateRental)

	// 2. 現物起点。現在この現物を保持している貸出
	r.GET("/inventory/:inventory_id/current-rental", h.GetCurrentRental)
}

// ---------- handlers ----------

func (h *Handler) CreateRental(c *gin.Context) {
	var req CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.CreateRental(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	c.Header("Location", "/rentals/"+res.RentalULID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) UpdateRental(c *gin.Context) {
	var req UpdateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.UpdateRental(c.Request.Context(), c.Param("rental_key"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetRental(c *gin.Context) {
	res, err := h.svc.GetRentalByKey(c.Request.Context(), c.Param("rental_key"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListRentals(c *gin.Context) {
	f := RentalFilter{}
	if v := c.Query("patron_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			f.PatronID = &id
		}
	}
	if v := c.Query("inventory_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			f.InventoryID = &id
		}
	}
	if v := c.Query("open"); v == "true" || v == "1" {
		f.OpenOnly = true
	}
	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), 50),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}

	items, total, err := h.svc.ListRentals(c.Request.Context(), f, p)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *Handler) GetCurrentRental(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("inventory_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "inventory_id must be a number"))
		return
	}
	res, err := h.svc.CurrentRental(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
