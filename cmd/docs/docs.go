// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/backoffice_backend/main.go -o cmd/docs
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
        "/bootstrap/status": {"get": {"tags": ["bootstrap"], "summary": "Bootstrap status", "responses": {"200": {"description": "OK"}}}},
        "/bootstrap": {"post": {"tags": ["bootstrap"], "summary": "Create the first administrator", "responses": {"201": {"description": "Created"}, "409": {"description": "Already initialized"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Employee login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/google/login-url": {"get": {"tags": ["oauth"], "summary": "Google consent URL", "responses": {"200": {"description": "OK"}}}},
        "/auth/google/exchange-code": {"post": {"tags": ["oauth"], "summary": "Exchange authorization code for access token", "responses": {"200": {"description": "OK"}}}},
        "/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["permissions"], "summary": "Current employee", "responses": {"200": {"description": "OK"}}}},
        "/me/permissions": {"get": {"security": [{"BearerAuth": []}], "tags": ["permissions"], "summary": "Effective permissions of the caller", "responses": {"200": {"description": "OK"}}}},
        "/permissions/catalog": {"get": {"security": [{"BearerAuth": []}], "tags": ["permissions"], "summary": "Permission catalog", "responses": {"200": {"description": "OK"}}}},
        "/permissions/check": {"post": {"security": [{"BearerAuth": []}], "tags": ["permissions"], "summary": "Check a permission", "responses": {"200": {"description": "OK"}}}},
        "/permission-groups": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["permission groups"], "summary": "List permission groups", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["permission groups"], "summary": "Create a permission group", "responses": {"201": {"description": "Created"}}}
        },
        "/permission-groups/{groupID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["permission groups"], "summary": "Get a permission group", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["permission groups"], "summary": "Update a permission group", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["permission groups"], "summary": "Delete a permission group", "responses": {"204": {"description": "No Content"}}}
        },
        "/employees": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "List employees", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Create an employee", "responses": {"201": {"description": "Created"}}}
        },
        "/employees/{employeeID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Get an employee", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Update an employee", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Deactivate an employee", "responses": {"204": {"description": "No Content"}}}
        },
        "/tickets": {"get": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "List ticket records", "responses": {"200": {"description": "OK"}}}},
        "/tickets/stream": {"get": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Stream ticket changes", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}},
        "/tickets/sales": {"post": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Record a ticket sale", "responses": {"201": {"description": "Created"}}}},
        "/tickets/changes": {"post": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Record a ticket change", "responses": {"201": {"description": "Created"}}}},
        "/tickets/refunds": {"post": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Record a refund", "responses": {"201": {"description": "Created"}}}},
        "/tickets/{entryID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Get a ticket record", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Update a ticket record", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tickets"], "summary": "Delete a ticket record", "responses": {"204": {"description": "No Content"}}}
        },
        "/exchange-rates": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["exchange rates"], "summary": "USD->IQD rate history", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["exchange rates"], "summary": "Record the USD->IQD rate", "responses": {"201": {"description": "Created"}}}
        },
        "/exchange-rates/current": {"get": {"security": [{"BearerAuth": []}], "tags": ["exchange rates"], "summary": "Current USD->IQD rate", "responses": {"200": {"description": "OK"}}}},
        "/reports/profit": {"get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Profit per currency", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Travel Back-Office API",
	Description:      "Employees, permission groups and ticket records of a travel agency.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
