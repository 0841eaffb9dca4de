package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bimbel Calendar & Scheduling API",
        "description": "Schedule materialization, conflict checking, planner boards and calendar exports for coaching batches.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Calendar", "description": "Materialized calendar views and exports"},
        {"name": "Conflicts", "description": "Overlap validation for proposed placements"},
        {"name": "Planner", "description": "Optimistic drag-and-drop planner boards"},
        {"name": "Batches", "description": "Coaching batch roster, capacity and suggestions"},
        {"name": "Schedule", "description": "Recurring rules, overrides and pinned sessions"},
        {"name": "Teachers", "description": "Teacher roster and free/busy"},
        {"name": "Blocks", "description": "Teacher time reservations"},
        {"name": "Holidays", "description": "Institute-wide non-teaching dates"},
        {"name": "Metrics", "description": "Engine counters"}
    ],
    "paths": {
        "/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Materialized calendar window",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/export": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Export a schedule window as CSV or PDF",
                "parameters": [
                    {"name": "teacherId", "in": "query", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "link", "in": "query", "type": "boolean", "description": "Return a signed download link instead of streaming"}
                ],
                "responses": {
                    "200": {"description": "Rendered file or signed link"},
                    "400": {"description": "Window too large or malformed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/export/{token}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Download a previously generated export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "404": {"description": "Unknown, expired or cleaned up", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/check": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Validate a proposed placement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Verdict with conflict details", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner": {
            "post": {
                "tags": ["Planner"],
                "summary": "Open a planner board",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenBoardRequest"}}
                ],
                "responses": {
                    "201": {"description": "Board token and initial events", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/{token}": {
            "delete": {
                "tags": ["Planner"],
                "summary": "Close a planner board",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Unknown or expired board", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/{token}/events": {
            "get": {
                "tags": ["Planner"],
                "summary": "Current board state",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Events, blocks and board version", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/{token}/refresh": {
            "post": {
                "tags": ["Planner"],
                "summary": "Re-materialize the board window",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Refreshed state, in-flight gestures preserved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/{token}/gestures": {
            "post": {
                "tags": ["Planner"],
                "summary": "Begin a move, resize, create or delete gesture",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BeginGestureRequest"}}
                ],
                "responses": {
                    "201": {"description": "Gesture with tentative instance", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Target already carries a gesture", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/{token}/gestures/{gestureId}": {
            "patch": {
                "tags": ["Planner"],
                "summary": "Adjust an in-flight gesture",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "gestureId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGestureRequest"}}
                ],
                "responses": {
                    "200": {"description": "Snapped tentative state and validation verdict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Planner"],
                "summary": "Cancel a gesture and restore the snapshot",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "gestureId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/planner/{token}/gestures/{gestureId}/commit": {
            "post": {
                "tags": ["Planner"],
                "summary": "Validate and persist a gesture",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "gestureId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Commit result with replacement UID", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicting placement, board rolled back", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/{token}/blocks": {
            "post": {
                "tags": ["Planner"],
                "summary": "Reserve teacher time from the board",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BoardBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/{token}/blocks/{id}": {
            "delete": {
                "tags": ["Planner"],
                "summary": "Remove a reservation from the board",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/batches": {
            "get": {
                "tags": ["Batches"],
                "summary": "List batches",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "archived"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Batches"],
                "summary": "Create batch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}": {
            "get": {
                "tags": ["Batches"],
                "summary": "Get batch detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Batches"],
                "summary": "Update batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Batches"],
                "summary": "Archive batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/batches/{id}/enrollment": {
            "put": {
                "tags": ["Batches"],
                "summary": "Set enrolled head count",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Over capacity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/capacity": {
            "get": {
                "tags": ["Batches"],
                "summary": "Capacity snapshot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/reschedule-options": {
            "get": {
                "tags": ["Batches"],
                "summary": "Ranked replacement slots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "weeks", "in": "query", "type": "integer", "minimum": 1, "maximum": 12}
                ],
                "responses": {
                    "200": {"description": "Candidates ordered by desirability", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/availability": {
            "get": {
                "tags": ["Batches"],
                "summary": "Whether the batch can meet on a date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/rules": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List recurring rules of a batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedule"],
                "summary": "Add a recurring rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlapping rule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/rules/{ruleId}": {
            "put": {
                "tags": ["Schedule"],
                "summary": "Update a recurring rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "ruleId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRuleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedule"],
                "summary": "Delete a recurring rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "ruleId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/overrides": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List overrides",
                "parameters": [
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedule"],
                "summary": "Create or replace the override for a batch and date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertOverrideRequest"}}
                ],
                "responses": {
                    "200": {"description": "Upserted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/overrides/{id}": {
            "delete": {
                "tags": ["Schedule"],
                "summary": "Delete an override",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List pinned sessions",
                "parameters": [
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["scheduled", "completed", "cancelled"]},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedule"],
                "summary": "Pin an explicit session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicting placement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Get session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedule"],
                "summary": "Update session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedule"],
                "summary": "Cancel session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Update teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Deactivate teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/teachers/{id}/freebusy": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Free and busy intervals for a working day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/blocks": {
            "get": {
                "tags": ["Blocks"],
                "summary": "List time blocks of a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blocks": {
            "post": {
                "tags": ["Blocks"],
                "summary": "Reserve teacher time",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBlockRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlapping reservation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blocks/{id}": {
            "delete": {
                "tags": ["Blocks"],
                "summary": "Remove a reservation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/holidays": {
            "get": {
                "tags": ["Holidays"],
                "summary": "List holidays in a window",
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Holidays"],
                "summary": "Mark a non-teaching date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHolidayRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Date already marked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays/{id}": {
            "delete": {
                "tags": ["Holidays"],
                "summary": "Unmark a holiday",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/metrics/system": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Aggregated engine counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CalendarEventInstance": {
            "type": "object",
            "properties": {
                "uid": {"type": "string"},
                "batch_id": {"type": "string"},
                "session_id": {"type": "string"},
                "title": {"type": "string"},
                "teacher_id": {"type": "string"},
                "room": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "duration_min": {"type": "integer"},
                "cancelled": {"type": "boolean"},
                "status": {"type": "string", "enum": ["past", "ongoing", "upcoming", "cancelled"]},
                "source": {"type": "string", "enum": ["rule", "override", "session"]},
                "editable": {"type": "boolean"},
                "student_count": {"type": "integer"},
                "fee_due_count": {"type": "integer"},
                "risk_count": {"type": "integer"}
            }
        },
        "TimeBlock": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "start_time": {"type": "string"},
                "duration_min": {"type": "integer"},
                "label": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Batch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "teacher_id": {"type": "string"},
                "room": {"type": "string"},
                "duration_min": {"type": "integer"},
                "capacity": {"type": "integer"},
                "unlimited": {"type": "boolean"},
                "enrolled": {"type": "integer"},
                "fee_due_count": {"type": "integer"},
                "risk_count": {"type": "integer"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["active", "archived"]},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "CapacitySnapshot": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "capacity": {"type": "integer"},
                "unlimited": {"type": "boolean"},
                "enrolled": {"type": "integer"},
                "utilization": {"type": "number"},
                "full": {"type": "boolean"}
            }
        },
        "RescheduleCandidate": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "weekday": {"type": "integer"},
                "day_load_min": {"type": "integer"},
                "is_best": {"type": "boolean"}
            }
        },
        "FreeBusy": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "workday": {"$ref": "#/definitions/Interval"},
                "busy": {"type": "array", "items": {"$ref": "#/definitions/Interval"}},
                "free": {"type": "array", "items": {"$ref": "#/definitions/Interval"}}
            }
        },
        "Interval": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"}
            }
        },
        "ConflictCheckRequest": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "room": {"type": "string"},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "excludeUid": {"type": "string"},
                "generation": {"type": "integer"}
            },
            "required": ["teacherId", "start", "end"]
        },
        "ConflictCheckResult": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "conflicts": {"type": "array", "items": {"type": "object"}},
                "message": {"type": "string"},
                "generation": {"type": "integer"}
            }
        },
        "OpenBoardRequest": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "from": {"type": "string", "format": "date"},
                "to": {"type": "string", "format": "date"}
            },
            "required": ["teacherId", "from", "to"]
        },
        "BeginGestureRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["move", "resize", "create", "delete"]},
                "uid": {"type": "string"},
                "create": {"$ref": "#/definitions/CreateSpecRequest"}
            },
            "required": ["kind"]
        },
        "CreateSpecRequest": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"}
            },
            "required": ["batchId", "date", "startTime", "durationMin"]
        },
        "UpdateGestureRequest": {
            "type": "object",
            "properties": {
                "deltaMin": {"type": "integer"}
            },
            "required": ["deltaMin"]
        },
        "BoardBlockRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"},
                "label": {"type": "string"}
            },
            "required": ["date", "startTime", "durationMin", "label"]
        },
        "CreateBatchRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "teacherId": {"type": "string"},
                "room": {"type": "string"},
                "durationMin": {"type": "integer"},
                "capacity": {"type": "integer"},
                "unlimited": {"type": "boolean"},
                "enrolled": {"type": "integer"},
                "feeDueCount": {"type": "integer"},
                "riskCount": {"type": "integer"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"}
            },
            "required": ["name", "teacherId", "durationMin", "startDate"]
        },
        "UpdateBatchRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "teacherId": {"type": "string"},
                "room": {"type": "string"},
                "durationMin": {"type": "integer"},
                "capacity": {"type": "integer"},
                "unlimited": {"type": "boolean"},
                "enrolled": {"type": "integer"},
                "feeDueCount": {"type": "integer"},
                "riskCount": {"type": "integer"},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["active", "archived"]}
            }
        },
        "UpdateEnrollmentRequest": {
            "type": "object",
            "properties": {
                "enrolled": {"type": "integer"}
            },
            "required": ["enrolled"]
        },
        "CreateRuleRequest": {
            "type": "object",
            "properties": {
                "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"}
            },
            "required": ["weekday", "startTime", "durationMin"]
        },
        "UpdateRuleRequest": {
            "type": "object",
            "properties": {
                "weekday": {"type": "integer", "minimum": 0, "maximum": 6},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"}
            }
        },
        "UpsertOverrideRequest": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"},
                "cancelled": {"type": "boolean"},
                "reason": {"type": "string"}
            },
            "required": ["batchId", "date"]
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"},
                "note": {"type": "string"}
            },
            "required": ["batchId", "date", "startTime", "durationMin"]
        },
        "UpdateSessionRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"},
                "status": {"type": "string", "enum": ["scheduled", "completed", "cancelled"]},
                "note": {"type": "string"}
            }
        },
        "CreateBlockRequest": {
            "type": "object",
            "properties": {
                "teacherId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string"},
                "durationMin": {"type": "integer"},
                "label": {"type": "string"}
            },
            "required": ["teacherId", "date", "startTime", "durationMin", "label"]
        },
        "CreateHolidayRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "name": {"type": "string"}
            },
            "required": ["date", "name"]
        },
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "phone": {"type": "string"},
                "subject": {"type": "string"}
            },
            "required": ["email", "fullName"]
        },
        "UpdateTeacherRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "phone": {"type": "string"},
                "subject": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["email", "fullName"]
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
