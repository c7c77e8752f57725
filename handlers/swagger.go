package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>essaypilot — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the service endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "essaypilot", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Login with identity-provider credentials",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "401": { "description": "authentication failed" } }
      }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/analyze": {
      "post": { "summary": "Analyze essay text", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"text":{"type":"string"},"targetUniversity":{"type":"string"},"essayId":{"type":"string"}}}}}}, "responses": { "200": { "description": "analysis returned" }, "400": { "description": "text missing" } } }
    },
    "/api/rewrite": {
      "post": { "summary": "Rewrite essay text", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"text":{"type":"string"},"targetUniversity":{"type":"string"},"feedbackData":{"type":"object"}}}}}}, "responses": { "200": { "description": "rewritten text returned" }, "400": { "description": "text missing" } } }
    },
    "/api/essays": {
      "get": { "summary": "List the caller's essays", "responses": { "200": { "description": "essays returned" } } },
      "post": { "summary": "Create an essay", "responses": { "201": { "description": "essay created" }, "400": { "description": "title missing" } } }
    },
    "/api/essays/{id}": {
      "get": { "summary": "Get an essay with its latest analysis", "responses": { "200": { "description": "essay returned" }, "403": { "description": "not the owner" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update an essay", "responses": { "200": { "description": "essay updated" } } },
      "delete": { "summary": "Delete an essay", "responses": { "200": { "description": "essay deleted" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
