package middleware

import (
	"bytes"
	"io"
	"time"

	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// bodyLogWriter 응답 본문 캡처용
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 는 응답을 gin.ResponseWriter 와 내부 버퍼 양쪽에 쓴다.
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLogger 는 요청/응답 상세를 구조화 로그로 남기는 미들웨어다.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// 요청 본문을 읽고 다시 채워 넣는다. 후속 핸들러가 정상적으로 읽을 수 있어야 한다.
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		latency := time.Since(startTime)
		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBody", string(requestBody),
			"responseBody", blw.body.String(),
		)
	}
}
