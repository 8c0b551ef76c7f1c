// Package docs holds the OpenAPI description of the dashboard API, served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/dataset": {
            "get": {
                "description": "Record count, malformed cells, column resolution and boundary sets of the loaded data",
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Get dataset report",
                "responses": {
                    "200": {"description": "Load report", "schema": {"$ref": "#/definitions/handler.DatasetResponse"}}
                }
            }
        },
        "/pages": {
            "get": {
                "description": "Get every dashboard page with its sections and the columns they need",
                "produces": ["application/json"],
                "tags": ["pages"],
                "summary": "List report pages",
                "responses": {
                    "200": {"description": "Page catalogue", "schema": {"type": "array", "items": {"$ref": "#/definitions/report.PageInfo"}}}
                }
            }
        },
        "/pages/{page}": {
            "get": {
                "description": "Build every section of a page. Failed sections carry their own error; the page still answers 200",
                "produces": ["application/json"],
                "tags": ["pages"],
                "summary": "Get report page",
                "parameters": [
                    {"type": "string", "description": "Page ID", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Built page", "schema": {"type": "object"}},
                    "404": {"description": "Unknown page", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/charts/{page}/{section}": {
            "get": {
                "description": "Render the chart or map of a section as SVG",
                "produces": ["image/svg+xml"],
                "tags": ["pages"],
                "summary": "Get section chart",
                "parameters": [
                    {"type": "string", "description": "Page ID", "name": "page", "in": "path", "required": true},
                    {"type": "string", "description": "Section ID", "name": "section", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "SVG chart", "schema": {"type": "file"}},
                    "404": {"description": "Unknown page or section, or the section draws no chart", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Section could not be built from the data", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "503": {"description": "Source data unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/exports": {
            "post": {
                "description": "Write the table of a report section as csv, json, xlsx, or into the aggregates table (db)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "Export a section table",
                "parameters": [
                    {"description": "Section and format", "name": "export", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Export created", "schema": {"$ref": "#/definitions/handler.ExportResponse"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Unknown page or section", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Section could not be built from the data", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "description": "Retrieve the metadata and download URL of an export",
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "Get export",
                "parameters": [
                    {"type": "string", "description": "Export ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Export details", "schema": {"$ref": "#/definitions/handler.ExportResponse"}},
                    "404": {"description": "Export not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/download/{id}/{file}": {
            "get": {
                "description": "Download a file written by an export",
                "produces": ["application/octet-stream"],
                "tags": ["exports"],
                "summary": "Download export file",
                "parameters": [
                    {"type": "string", "description": "Export ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "File name", "name": "file", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Exported file", "schema": {"type": "file"}},
                    "404": {"description": "File not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/runs": {
            "get": {
                "description": "Get recorded page runs, newest first",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Maximum number of runs", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Run history", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.RunRecord"}}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/runs/{id}/errors": {
            "get": {
                "description": "Retrieve the errors of the sections that failed during a run",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run errors",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Section errors", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.SectionError"}}},
                    "404": {"description": "Run not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.Error": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/errors.Error"}
            }
        },
        "handler.DatasetResponse": {
            "type": "object",
            "properties": {
                "records": {"type": "integer"},
                "missing_columns": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"},
                "report": {"type": "object"}
            }
        },
        "handler.ExportRequest": {
            "type": "object",
            "required": ["format", "page", "section"],
            "properties": {
                "page": {"type": "string"},
                "section": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "json", "xlsx", "db"]},
                "run_id": {"type": "string"}
            }
        },
        "handler.ExportResponse": {
            "type": "object",
            "properties": {
                "export": {"$ref": "#/definitions/model.ExportRecord"},
                "download_url": {"type": "string"}
            }
        },
        "model.ExportRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "run_id": {"type": "string"},
                "page": {"type": "string"},
                "section": {"type": "string"},
                "format": {"type": "string"},
                "path": {"type": "string"},
                "rows": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "model.RunRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "page": {"type": "string"},
                "status": {"type": "string"},
                "sections": {"type": "integer"},
                "failed": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "model.SectionError": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "section": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "report.PageInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "sections": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Wood Mobilization Dashboard API",
	Description:      "Report pages, charts and exports over Colombian wood mobilization records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
