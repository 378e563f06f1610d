// Package docs contains the generated swagger specification.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up",
                "parameters": [
                    {
                        "description": "Signup fields",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.SignupRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.AuthResponse"}},
                    "400": {"description": "Missing or malformed fields", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/signin": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/auth.SigninRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.AuthResponse"}},
                    "400": {"description": "Missing fields or invalid request body", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.UserResponse"}},
                    "401": {"description": "Missing, invalid, or orphaned token", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/holdings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "List holdings",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/holding.ListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Create holding",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "description": "Holding fields",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/holding.HoldingRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/holding.HoldingResponse"}},
                    "400": {"description": "Missing or invalid fields", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/holdings/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Portfolio summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/holding.Summary"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/holdings/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Get holding",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "string", "description": "Holding ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/holding.HoldingResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Update holding",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "string", "description": "Holding ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Holding fields",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/holding.HoldingRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/holding.HoldingResponse"}},
                    "400": {"description": "Missing or invalid fields", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Delete holding",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "string", "description": "Holding ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/holding.MessageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "auth.SignupRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.SigninRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "auth.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "tokenType": {"type": "string"},
                "expiresIn": {"type": "integer"},
                "user": {"$ref": "#/definitions/auth.UserResponse"}
            }
        },
        "holding.HoldingRequest": {
            "type": "object",
            "properties": {
                "stockName": {"type": "string"},
                "ticker": {"type": "string"},
                "quantity": {"type": "integer"},
                "buyPrice": {"type": "number"}
            }
        },
        "holding.Holding": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ownerId": {"type": "string"},
                "stockName": {"type": "string"},
                "ticker": {"type": "string"},
                "quantity": {"type": "integer"},
                "buyPrice": {"type": "number"},
                "currentPrice": {"type": "number"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "holding.HoldingResponse": {
            "type": "object",
            "properties": {
                "holding": {"$ref": "#/definitions/holding.Holding"}
            }
        },
        "holding.ListResponse": {
            "type": "object",
            "properties": {
                "holdings": {"type": "array", "items": {"$ref": "#/definitions/holding.Holding"}}
            }
        },
        "holding.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "holding.Summary": {
            "type": "object",
            "properties": {
                "totalInvested": {"type": "number"},
                "currentValue": {"type": "number"},
                "profitLoss": {"type": "number"},
                "profitLossPct": {"type": "number"},
                "holdingCount": {"type": "integer"}
            }
        },
        "httputil.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Portfolio Tracker API",
	Description:      "Personal investment-portfolio tracker: token-based auth and ownership-scoped stock holdings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
