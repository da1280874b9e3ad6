package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TimeGrid API",
        "description": "Weekly scheduling grid with conflict detection and drag rescheduling",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Grid", "description": "Week view, filters and conflicts"},
        {"name": "Drag", "description": "Drag-reschedule gesture session"}
    ],
    "paths": {
        "/status": {
            "get": {
                "summary": "Aggregated runtime statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/week": {
            "get": {
                "tags": ["Grid"],
                "summary": "Load and render one week of the grid",
                "parameters": [
                    {"name": "anchor", "in": "query", "required": true, "type": "string", "description": "Any date inside the wanted week (YYYY-MM-DD)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend fetch failed, previous week retained"}
                }
            }
        },
        "/grid/filters": {
            "put": {
                "tags": ["Grid"],
                "summary": "Replace the active filter criteria",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetFiltersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/conflicts": {
            "get": {
                "tags": ["Grid"],
                "summary": "Current conflict summary for the loaded window",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/events": {
            "post": {
                "tags": ["Grid"],
                "summary": "Add or replace a calendar event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalendarEvent"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/events/{id}/relocate": {
            "post": {
                "tags": ["Grid"],
                "summary": "Move an event to a new day and start time",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RelocateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Event not found"},
                    "422": {"description": "Target outside the grid window"}
                }
            }
        },
        "/grid/events/{id}": {
            "delete": {
                "tags": ["Grid"],
                "summary": "Delete an event from the grid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Event not found"}
                }
            }
        },
        "/grid/drag/pickup": {
            "post": {
                "tags": ["Drag"],
                "summary": "Start a drag gesture for an event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DragPickUpRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Event not found"}
                }
            }
        },
        "/grid/drag/hover": {
            "post": {
                "tags": ["Drag"],
                "summary": "Record the grid cell under the pointer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DragTargetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No drag in progress"}
                }
            }
        },
        "/grid/drag/drop": {
            "post": {
                "tags": ["Drag"],
                "summary": "Drop the dragged event on a grid cell",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DragTargetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No drag in progress"},
                    "422": {"description": "Target outside the grid window"}
                }
            }
        },
        "/grid/drag/cancel": {
            "post": {
                "tags": ["Drag"],
                "summary": "Abandon the active drag gesture",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "CalendarEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "duration": {"type": "integer"},
                "type": {"type": "string", "enum": ["lecture", "tutorial", "lab", "exam", "project"]},
                "status": {"type": "string", "enum": ["scheduled", "ongoing", "completed", "cancelled", "conflict"]},
                "subject": {"$ref": "#/definitions/SubjectRef"},
                "teacher": {"$ref": "#/definitions/TeacherRef"},
                "room": {"$ref": "#/definitions/RoomRef"},
                "programs": {"type": "array", "items": {"$ref": "#/definitions/ProgramRef"}},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/ConflictInfo"}},
                "lastModified": {"type": "string"}
            }
        },
        "SubjectRef": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "code": {"type": "string"},
                "color": {"type": "string"}
            }
        },
        "TeacherRef": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "RoomRef": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "capacity": {"type": "integer"},
                "building": {"type": "string"}
            }
        },
        "ProgramRef": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "enrolledCount": {"type": "integer"}
            }
        },
        "ConflictInfo": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["teacher_conflict", "room_conflict", "student_conflict", "capacity_exceeded"]},
                "severity": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
                "message": {"type": "string"},
                "other": {"type": "object"}
            }
        },
        "SetFiltersRequest": {
            "type": "object",
            "properties": {
                "search": {"type": "string"},
                "teacher_ids": {"type": "array", "items": {"type": "string"}},
                "room_ids": {"type": "array", "items": {"type": "string"}},
                "types": {"type": "array", "items": {"type": "string"}},
                "show_conflicts": {"type": "boolean"},
                "show_completed": {"type": "boolean"}
            }
        },
        "RelocateRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "start_time": {"type": "string"}
            },
            "required": ["date", "start_time"]
        },
        "DragPickUpRequest": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"}
            },
            "required": ["event_id"]
        },
        "DragTargetRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "slot": {"type": "string"}
            },
            "required": ["date", "slot"]
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
