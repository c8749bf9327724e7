package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Marks Console API",
        "description": "Server-side admin console for the school marks grid",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Console sessions"},
        {"name": "Filters", "description": "Filter dimensions and options"},
        {"name": "Grid", "description": "The marks grid and its controls"},
        {"name": "Editing", "description": "Single and bulk mark editing"},
        {"name": "Settings", "description": "Per-user console settings"},
        {"name": "Export", "description": "Downloadable mark reports"},
        {"name": "Audit", "description": "Mark change trail"}
    ],
    "paths": {
        "/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate against the school backend",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "End the console session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Session ended"}
                }
            }
        },
        "/filters": {
            "get": {
                "tags": ["Filters"],
                "summary": "List filter dimensions and their options",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "class_field", "in": "query", "type": "string"},
                    {"name": "division", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid": {
            "get": {
                "tags": ["Grid"],
                "summary": "Fetch the marks grid for the current selections",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/filters/{name}": {
            "put": {
                "tags": ["Grid"],
                "summary": "Apply one filter selection",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FilterValue"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/filters": {
            "delete": {
                "tags": ["Grid"],
                "summary": "Clear every filter selection",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/page": {
            "put": {
                "tags": ["Grid"],
                "summary": "Navigate to a page",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/page-size": {
            "put": {
                "tags": ["Grid"],
                "summary": "Switch the page size",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PageSizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unsupported page size"}
                }
            }
        },
        "/grid/edit/{slno}": {
            "post": {
                "tags": ["Editing"],
                "summary": "Open the edit buffer for one record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "slno", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another record is already being edited"}
                }
            }
        },
        "/grid/edit/value": {
            "put": {
                "tags": ["Editing"],
                "summary": "Update the open edit buffer with a new input",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RawValue"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/edit/save": {
            "post": {
                "tags": ["Editing"],
                "summary": "Commit the open edit buffer",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"},
                    "502": {"description": "The school backend rejected the update"}
                }
            }
        },
        "/grid/edit": {
            "delete": {
                "tags": ["Editing"],
                "summary": "Abandon the open edit buffer",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Buffer discarded"},
                    "409": {"description": "A save is already in progress"}
                }
            }
        },
        "/grid/bulk/{slno}": {
            "put": {
                "tags": ["Editing"],
                "summary": "Record one bulk-edit input",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "slno", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RawValue"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/bulk/save": {
            "post": {
                "tags": ["Editing"],
                "summary": "Commit every valid bulk entry as one batch",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Entries invalid or nothing to save"}
                }
            }
        },
        "/grid/bulk": {
            "delete": {
                "tags": ["Editing"],
                "summary": "Abandon every bulk entry",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Buffer discarded"}
                }
            }
        },
        "/settings/edit-mode": {
            "get": {
                "tags": ["Settings"],
                "summary": "Read the current edit mode",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Switch between single and bulk editing",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditModeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/marks/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Download the filtered marks as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "class_field", "in": "query", "type": "string"},
                    {"name": "division", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/audit/marks": {
            "get": {
                "tags": ["Audit"],
                "summary": "List recent mark changes",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "user_id", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "pass": {"type": "string"}
            },
            "required": ["id", "pass"]
        },
        "FilterValue": {
            "type": "object",
            "properties": {
                "value": {"type": "string"}
            }
        },
        "PageRequest": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"}
            },
            "required": ["page"]
        },
        "PageSizeRequest": {
            "type": "object",
            "properties": {
                "page_size": {"type": "integer", "enum": [10, 20, 50, 100]}
            },
            "required": ["page_size"]
        },
        "RawValue": {
            "type": "object",
            "properties": {
                "value": {"type": "string"}
            }
        },
        "EditModeRequest": {
            "type": "object",
            "properties": {
                "edit_mode": {"type": "string", "enum": ["single", "bulk"]}
            },
            "required": ["edit_mode"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
