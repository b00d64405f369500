package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Code 0 means success; any other value is an application error code.
const codeOK = 0

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// ListData wraps collection payloads.
type ListData struct {
	List  interface{} `json:"list"`
	Total int         `json:"total"`
}

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Code: codeOK, Message: "success", Data: data})
}

func OK(c *gin.Context, data interface{})      { success(c, http.StatusOK, data) }
func Created(c *gin.Context, data interface{}) { success(c, http.StatusCreated, data) }

// OKList answers 200 with {list, total}.
func OKList(c *gin.Context, list interface{}, total int) {
	success(c, http.StatusOK, ListData{List: list, Total: total})
}

// Error writes a failure envelope. It does not abort the chain; middleware
// callers do that themselves.
func Error(c *gin.Context, httpStatus int, code int, message string) {
	ErrorWithDetails(c, httpStatus, code, message, "")
}

// ErrorWithDetails is Error plus a machine-readable details string, for
// example the ID of the order a conflict was found with.
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{Code: code, Message: message, Details: details})
}

func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code int, message, details string) {
	ErrorWithDetails(c, http.StatusConflict, code, message, details)
}

// InternalError hides the cause; handlers log it before calling.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "internal server error")
}
