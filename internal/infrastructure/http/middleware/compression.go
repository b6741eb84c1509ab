package middleware

import (
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

const compressionMinSize = 512

// Compression brotli-encodes text responses for clients that accept "br"
func (m *Middleware) Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Server.EnableCompression ||
			!strings.Contains(c.GetHeader("Accept-Encoding"), "br") ||
			strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		writer := &brotliResponseWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		defer writer.Close()

		c.Next()
	}
}

// brotliResponseWriter wraps gin.ResponseWriter to provide brotli compression
type brotliResponseWriter struct {
	gin.ResponseWriter
	encoder *brotli.Writer
	decided bool
}

// Write implements the io.Writer interface
func (w *brotliResponseWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decide(len(data))
	}
	if w.encoder != nil {
		return w.encoder.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

// WriteString keeps string renders on the compressed path
func (w *brotliResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// decide switches to brotli on the first write, once the content type is known
func (w *brotliResponseWriter) decide(firstWrite int) {
	w.decided = true

	header := w.ResponseWriter.Header()
	if header.Get("Content-Encoding") != "" || firstWrite < compressionMinSize {
		return
	}
	if !compressible(header.Get("Content-Type")) {
		return
	}

	header.Set("Content-Encoding", "br")
	header.Add("Vary", "Accept-Encoding")
	header.Del("Content-Length")
	w.encoder = brotli.NewWriterLevel(w.ResponseWriter, brotli.DefaultCompression)
}

// Close flushes the encoder
func (w *brotliResponseWriter) Close() {
	if w.encoder != nil {
		_ = w.encoder.Close()
	}
}

func compressible(contentType string) bool {
	mainType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	return strings.HasPrefix(mainType, "text/") ||
		mainType == "application/json" ||
		mainType == "application/yaml"
}
