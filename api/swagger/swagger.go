package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Registrar API",
        "description": "Student records, course enrollment and library lending for campus administrators",
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
        {"name": "Auth", "description": "Administrator login"},
        {"name": "Students", "description": "Student records"},
        {"name": "Courses", "description": "Course catalogue"},
        {"name": "Books", "description": "Library catalogue"},
        {"name": "Enrollments", "description": "Enrollment lifecycle"},
        {"name": "Borrows", "description": "Loan lifecycle and fines"},
        {"name": "Dashboard", "description": "Aggregated statistics"},
        {"name": "Exports", "description": "CSV, PDF and XLSX downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange administrator credentials for a bearer token",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current administrator",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"in": "query", "name": "search", "type": "string", "description": "Matches name, student ID or major"},
                    {"in": "query", "name": "major", "type": "string"},
                    {"in": "query", "name": "grade", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["active", "graduated", "suspended"]},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/PerPage"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}}, "400": {"description": "Validation or unique constraint violation", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student with enrolled courses and borrowed books",
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Partially update a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student with their enrollments and loans",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "department", "type": "string"},
                    {"in": "query", "name": "semester", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["active", "inactive", "completed"]},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/PerPage"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/courses/{id}": {
            "get": {"tags": ["Courses"], "summary": "Get a course", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}},
            "put": {"tags": ["Courses"], "summary": "Update a course", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}, {"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Courses"], "summary": "Delete a course without active enrollments", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Course still has enrolled students"}}}
        },
        "/books": {
            "get": {
                "tags": ["Books"],
                "summary": "List books",
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["available", "unavailable", "maintenance"]},
                    {"in": "query", "name": "available_only", "type": "boolean"},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/PerPage"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {"tags": ["Books"], "summary": "Add a book", "security": [{"BearerAuth": []}], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/books/{id}": {
            "get": {"tags": ["Books"], "summary": "Get a book", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Books"], "summary": "Update a book", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}, {"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Books"], "summary": "Delete a book without active loans", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Book still on loan"}}}
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "parameters": [
                    {"in": "query", "name": "student_id", "type": "string"},
                    {"in": "query", "name": "course_id", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["enrolled", "dropped", "completed"]},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/PerPage"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {"tags": ["Enrollments"], "summary": "Enroll a student in a course", "security": [{"BearerAuth": []}], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Already enrolled, course full or closed"}}}
        },
        "/enrollments/{id}": {
            "get": {"tags": ["Enrollments"], "summary": "Get an enrollment", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Enrollments"], "summary": "Drop, complete with a grade or edit notes", "description": "status=completed with grade is a shortcut for action=complete; status=enrolled is rejected.", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateEnrollmentRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid action or status"}}},
            "delete": {"tags": ["Enrollments"], "summary": "Drop an enrollment", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/enrollments/{id}/purge": {
            "delete": {"tags": ["Enrollments"], "summary": "Permanently delete a dropped or completed enrollment", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Enrollment still active"}}}
        },
        "/borrows": {
            "get": {
                "tags": ["Borrows"],
                "summary": "List borrow records, newest first",
                "parameters": [
                    {"in": "query", "name": "student_id", "type": "string"},
                    {"in": "query", "name": "book_id", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["borrowed", "returned", "overdue", "lost"]},
                    {"in": "query", "name": "overdue_only", "type": "boolean"},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/PerPage"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {"tags": ["Borrows"], "summary": "Lend a book to a student", "security": [{"BearerAuth": []}], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/BorrowRequest"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Limit reached, duplicate loan or no copies"}}}
        },
        "/borrows/overdue": {
            "get": {"tags": ["Borrows"], "summary": "List overdue loans, most overdue first", "parameters": [{"$ref": "#/parameters/Page"}, {"$ref": "#/parameters/PerPage"}], "responses": {"200": {"description": "OK"}}}
        },
        "/borrows/maintenance/overdue": {
            "post": {"tags": ["Borrows"], "summary": "Flip every past-due loan to overdue", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/borrows/{id}": {
            "get": {"tags": ["Borrows"], "summary": "Get a borrow record", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Borrows"], "summary": "Return, extend, mark lost, pay fine or edit", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateBorrowRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Borrows"], "summary": "Delete a returned or lost borrow record", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Loan still active"}}}
        },
        "/dashboard": {
            "get": {"tags": ["Dashboard"], "summary": "Registrar dashboard", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}}
        },
        "/exports/{dataset}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export a dataset",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"in": "path", "name": "dataset", "required": true, "type": "string", "enum": ["students", "courses", "books", "enrollments", "borrows", "overdue"]},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf", "xlsx"]},
                    {"in": "query", "name": "search", "type": "string"}
                ],
                "responses": {"200": {"description": "File"}, "400": {"description": "Unsupported format"}, "404": {"description": "Unknown dataset"}}
            }
        }
    },
    "parameters": {
        "ID": {"in": "path", "name": "id", "required": true, "type": "string", "format": "uuid"},
        "Page": {"in": "query", "name": "page", "type": "integer", "default": 1},
        "PerPage": {"in": "query", "name": "per_page", "type": "integer", "default": 10, "maximum": 100}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "StudentRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "name": {"type": "string"},
                "id_card": {"type": "string"},
                "gender": {"type": "string"},
                "age": {"type": "integer"},
                "major": {"type": "string"},
                "grade": {"type": "string"},
                "class_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "status": {"type": "string"},
                "enrollment_date": {"type": "string", "format": "date"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "required": ["student_id", "course_id"],
            "properties": {"student_id": {"type": "string"}, "course_id": {"type": "string"}, "notes": {"type": "string"}}
        },
        "UpdateEnrollmentRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["drop", "complete"]},
                "status": {"type": "string"},
                "grade": {"type": "number"},
                "notes": {"type": "string"}
            }
        },
        "BorrowRequest": {
            "type": "object",
            "required": ["student_id", "book_id"],
            "properties": {"student_id": {"type": "string"}, "book_id": {"type": "string"}, "notes": {"type": "string"}}
        },
        "UpdateBorrowRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["return", "extend", "lost", "pay_fine"]},
                "days": {"type": "integer"},
                "fine_amount": {"type": "number"},
                "due_date": {"type": "string", "format": "date"},
                "notes": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "pages": {"type": "integer"},
                "has_prev": {"type": "boolean"},
                "has_next": {"type": "boolean"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "message": {"type": "string"},
                "error_type": {"type": "string"}
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
