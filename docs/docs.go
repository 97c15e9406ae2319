// Package docs registers the OpenAPI document served at /swagger.
// Kept in sync with the godoc annotations on cmd/api/handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/content": {
            "get": {
                "description": "Without id, returns every post of the Notion database as summaries (newest first). With id, returns the raw Notion page and its ordered blocks.",
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "List posts or get a single post",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Notion page id",
                        "name": "id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/dto.PostSummaryDTO"}
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Retrieves the Notion database metadata to verify credentials and access.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dto.HealthResponseDTO"}
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"$ref": "#/definitions/dto.HealthResponseDTO"}
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponseDTO": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Failed to query Notion database"},
                "message": {"type": "string"}
            }
        },
        "dto.HealthResponseDTO": {
            "type": "object",
            "properties": {
                "database": {"type": "string", "example": "Research"},
                "error": {"type": "string"},
                "notion": {"type": "string", "example": "down"},
                "properties": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "dto.PostDetailDTO": {
            "type": "object",
            "properties": {
                "blocks": {"type": "array", "items": {"type": "object"}},
                "page": {"type": "object"}
            }
        },
        "dto.PostSummaryDTO": {
            "type": "object",
            "properties": {
                "cover": {"type": "string", "example": "https://images.example.com/cover.png"},
                "date": {"type": "string", "example": "2024-05-01"},
                "description": {"type": "string"},
                "id": {"type": "string", "example": "1a2b3c4d-0000-4000-8000-000000000000"},
                "slug": {"type": "string", "example": "hello-world"},
                "title": {"type": "string", "example": "Hello World"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Portfolio Site Content API",
	Description:      "Read-only proxy that normalizes a Notion blog database",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
