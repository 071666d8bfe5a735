package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JSONSuccess writes {"success":true,"data":...}.
func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// JSONError writes {"success":false,"error":...}.
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// XLSXAttachment sends a workbook as a download named filename.
func XLSXAttachment(c *gin.Context, code int, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(code, XLSXContentType, data)
}
