package apiserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec embed.FS

// OpenAPIHandler serves the embedded OpenAPI document
type OpenAPIHandler struct {
	yamlSpec []byte
	jsonSpec []byte
}

// NewOpenAPIHandler loads the embedded document and pre-renders its JSON form
func NewOpenAPIHandler(logger *zap.Logger) (*OpenAPIHandler, error) {
	specData, err := openAPISpec.ReadFile("openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI spec: %w", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(specData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI spec: %w", err)
	}

	logger.Debug("OpenAPI document loaded", zap.Int("bytes", len(specData)))
	return &OpenAPIHandler{yamlSpec: specData, jsonSpec: jsonData}, nil
}

// ServeYAML serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeYAML(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", h.yamlSpec)
}

// ServeJSON serves the OpenAPI specification in JSON format
func (h *OpenAPIHandler) ServeJSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", h.jsonSpec)
}
