// Package docs registers the OpenAPI document served under /swagger.
//
// Regenerate the paths section with `swag init -g cmd/api/main.go` after
// changing handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/groups": {
            "get": {"tags": ["groups"], "summary": "List my groups", "parameters": [{"type": "string", "name": "job_id", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["groups"], "summary": "Create a new group", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/groups/{id}": {
            "get": {"tags": ["groups"], "summary": "Get group by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/groups/{id}/readiness": {
            "get": {"tags": ["groups"], "summary": "Check whether the group can submit", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/groups/{id}/members": {
            "post": {"tags": ["groups"], "summary": "Add a member", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Already a member"}, "201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/groups/{id}/join": {
            "post": {"tags": ["groups"], "summary": "Join through the invite link", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Already a member"}, "201": {"description": "Created"}, "404": {"description": "Not Found"}}}
        },
        "/groups/{id}/respond": {
            "post": {"tags": ["groups"], "summary": "Accept or decline an invitation", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/members/{memberId}/status": {
            "put": {"tags": ["groups"], "summary": "Approve or reject a member", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "memberId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/members/{memberId}/participation": {
            "put": {"tags": ["groups"], "summary": "Set my participation", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "memberId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/applications": {
            "get": {"tags": ["applications"], "summary": "List my applications", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["applications"], "summary": "Submit an application", "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"}], "responses": {"200": {"description": "Existing application"}, "201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/applications/{id}/status": {
            "put": {"tags": ["applications"], "summary": "Update application status", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/notifications": {
            "get": {"tags": ["notifications"], "summary": "List my notifications", "parameters": [{"type": "boolean", "name": "unread_only", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/unread-count": {
            "get": {"tags": ["notifications"], "summary": "Unread badge count", "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/{id}/read": {
            "post": {"tags": ["notifications"], "summary": "Mark a notification as read", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/notifications/read-all": {
            "post": {"tags": ["notifications"], "summary": "Mark all notifications as read", "responses": {"200": {"description": "OK"}}}
        },
        "/users/me": {
            "get": {"tags": ["users"], "summary": "My profile", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["users"], "summary": "Sync my profile from the identity gateway", "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/friends": {
            "get": {"tags": ["users"], "summary": "My friends", "responses": {"200": {"description": "OK"}}}
        },
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get user by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/jobs": {
            "post": {"tags": ["jobs"], "summary": "Register a job posting", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/jobs/{id}": {
            "get": {"tags": ["jobs"], "summary": "Get job by ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Group Apply API",
	Description:      "Coordinate group applications to job postings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
