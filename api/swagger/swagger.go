package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Section timetable generation and lab report extraction",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Admin login"},
        {"name": "Catalog", "description": "Faculty, subject and room datasets"},
        {"name": "Timetables", "description": "Generation and lab reports"},
        {"name": "Reports", "description": "Asynchronous exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/catalog": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Upload catalog datasets",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "faculty", "in": "formData", "required": true, "type": "file"},
                    {"name": "subjects", "in": "formData", "required": true, "type": "file"},
                    {"name": "rooms", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed catalog"}
                }
            }
        },
        "/catalog/summary": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Describe the active catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No catalog uploaded"}
                }
            }
        },
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate timetables",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No catalog uploaded"}
                }
            }
        },
        "/timetables/{section}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Latest timetable for a section",
                "parameters": [
                    {"name": "section", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not generated"}
                }
            }
        },
        "/timetables/{section}/lab-report": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Lab report for a section",
                "parameters": [
                    {"name": "section", "in": "path", "required": true, "type": "string"},
                    {"name": "days", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not generated"}
                }
            }
        },
        "/timetables/{section}/lab-report.csv": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Lab report CSV download",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "section", "in": "path", "required": true, "type": "string"},
                    {"name": "days", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV payload"},
                    "404": {"description": "Not generated"}
                }
            }
        },
        "/timetables/{section}/runs": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Archived generation runs for a section",
                "parameters": [
                    {"name": "section", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{section}/runs/{runID}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "One archived run with its grid cells",
                "parameters": [
                    {"name": "section", "in": "path", "required": true, "type": "string"},
                    {"name": "runID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown run"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File payload"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "sections": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["lab_report", "timetable"]},
                "section": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "section", "format"]
        },
        "LabReportRow": {
            "type": "object",
            "properties": {
                "time": {"type": "string"},
                "day": {"type": "string"},
                "session": {"type": "string"}
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
