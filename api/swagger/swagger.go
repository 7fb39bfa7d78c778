package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Weekly timetable generation with lunch-aware lab blocks and teacher conflict repair",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Timetables", "description": "Generation, storage, editing and rendering of weekly timetables"},
        {"name": "Operations", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {"tags": ["Operations"], "summary": "Liveness probe", "security": [], "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness probe (postgres, redis)",
                "security": [],
                "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unavailable"}}
            }
        },
        "/metrics": {
            "get": {"tags": ["Operations"], "summary": "Prometheus metrics", "security": [], "produces": ["text/plain"], "responses": {"200": {"description": "Metrics"}}}
        },
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List stored timetables",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["DRAFT", "PUBLISHED", "ARCHIVED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a timetable proposal for stored classes",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}],
                "responses": {
                    "200": {"description": "Proposal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Generation exhausted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/generate/inline": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate timetables from an inline definition",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateFromDefinitionRequest"}}],
                "responses": {
                    "200": {"description": "Generated grids", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Generation exhausted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/jobs": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Queue a background generation",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}],
                "responses": {"202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/jobs/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a background generation",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/save": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Save a proposal as a new draft version",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"proposalId": {"type": "string"}}}}],
                "responses": {"201": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/validate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Check grids for teacher conflicts and integrity issues",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"sections": {"type": "array", "items": {"type": "object"}}}}}],
                "responses": {"200": {"description": "Report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/{id}": {
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete a draft timetable",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "409": {"description": "Not a draft"}}
            }
        },
        "/timetables/{id}/grid": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Stored timetable with every class grid",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Grid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/{id}/conflicts": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Teacher conflicts, suggested moves and integrity issues",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/{id}/loads": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Per-teacher load against max load",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Loads", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/{id}/sections/{sectionId}/display": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Presentation grid with lunch column and merged lab blocks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Display grid; meta.cache_hit reports cache use", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/{id}/sections/{sectionId}/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Download a class grid",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/timetables/{id}/moves": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Move or swap one cell of a draft timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveRequest"}}
                ],
                "responses": {"200": {"description": "Conflict report after the edit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/timetables/{id}/publish": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Publish a conflict-free draft",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Published"}, "409": {"description": "Conflicts remain or already published"}}
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["termId"],
            "properties": {
                "termId": {"type": "string"},
                "classIds": {"type": "array", "items": {"type": "string"}},
                "seed": {"type": "integer", "format": "int64"},
                "maxAttempts": {"type": "integer", "minimum": 1, "maximum": 100},
                "labLoadTolerance": {"type": "number", "minimum": 1, "maximum": 3}
            }
        },
        "GenerateFromDefinitionRequest": {
            "type": "object",
            "properties": {
                "definition": {
                    "type": "object",
                    "properties": {
                        "teachers": {"type": "array", "items": {"type": "object", "properties": {"name": {"type": "string"}, "maxLoad": {"type": "integer"}}}},
                        "subjects": {"type": "array", "items": {"type": "object", "properties": {
                            "name": {"type": "string"}, "periodsPerWeek": {"type": "integer"}, "isLab": {"type": "boolean"}, "blockSize": {"type": "integer"}
                        }}},
                        "sections": {"type": "array", "items": {"type": "object", "properties": {
                            "name": {"type": "string"}, "year": {"type": "string"},
                            "subjects": {"type": "array", "items": {"type": "object", "properties": {"subject": {"type": "string"}, "teacher": {"type": "string"}}}}
                        }}}
                    }
                },
                "seed": {"type": "integer", "format": "int64"},
                "maxAttempts": {"type": "integer"},
                "labLoadTolerance": {"type": "number"}
            }
        },
        "Slot": {
            "type": "object",
            "properties": {
                "day": {"type": "integer", "minimum": 0, "maximum": 5},
                "period": {"type": "integer", "minimum": 0, "maximum": 6}
            }
        },
        "MoveRequest": {
            "type": "object",
            "required": ["classId"],
            "properties": {
                "classId": {"type": "string"},
                "mode": {"type": "string", "enum": ["move", "swap"]},
                "from": {"$ref": "#/definitions/Slot"},
                "to": {"$ref": "#/definitions/Slot"}
            }
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
