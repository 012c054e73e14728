package availability

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /availability?book_id=  … 貸出可能数（book_id省略で全蔵書）
	r.GET("/availability", h.GetAvailability)
	// GET /availability/on-loan   … 全体の貸出中件数
	r.GET("/availability/on-loan", h.GetOnLoan)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	var bookID *int64
	if v := c.Query("book_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "book_id must be a number"))
			return
		}
		bookID = &id
	}

	n, err := h.svc.CountAvailable(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	body := gin.H{"available": n}
	if bookID != nil {
		body["book_id"] = *bookID
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) GetOnLoan(c *gin.Context) {
	n, err := h.svc.CountOnLoan(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"on_loan": n})
}

// ---------- helpers ----------

func apiErr(code Code, msg string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": msg}}
}

func apiErrFrom(err error) gin.H {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, err.Error())
}
