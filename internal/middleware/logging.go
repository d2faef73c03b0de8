// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ragbot-go/pkg/log"
)

// RequestLogger 是一个 Gin 中间件，用于记录请求日志。
// multipart 上传的请求体可能是数 MB 的文件内容，不做捕获。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		contentType := c.ContentType()

		c.Next()

		latency := time.Since(startTime)
		fields := []interface{}{
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", method,
			"path", path,
		}
		if strings.HasPrefix(contentType, "multipart/") {
			fields = append(fields, "contentLength", c.Request.ContentLength)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		log.Infow("HTTP Request Log", fields...)
	}
}
