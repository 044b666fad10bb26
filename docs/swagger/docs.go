// Package swagger holds the OpenAPI document for the bookmarks API.
// Regenerate with: swag init -g internal/api/main_annotations.go -o docs/swagger
package swagger

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
        "/healthy": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/user/": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Register",
                "parameters": [
                    {"description": "Account to create", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/user/token": {
            "post": {
                "description": "OAuth2 password grant. Tokens expire after 30 minutes by default.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Obtain an access token",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/user/me": {
            "get": {
                "security": [{"BearerToken": []}],
                "produces": ["application/json"],
                "tags": ["User"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerToken": []}],
                "tags": ["User"],
                "summary": "Delete account",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/bookmarks/": {
            "get": {
                "security": [{"BearerToken": []}],
                "produces": ["application/json"],
                "tags": ["Bookmarks"],
                "summary": "List bookmarks",
                "parameters": [
                    {"minimum": 0, "type": "integer", "default": 0, "description": "Items to skip", "name": "skip", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 10, "description": "Page size", "name": "limit", "in": "query"},
                    {"enum": ["newest", "oldest", "title_asc", "title_desc", "favorites_first", "favorites_last"], "type": "string", "description": "Ordering", "name": "sort_by", "in": "query"},
                    {"type": "string", "description": "Only bookmarks carrying this tag", "name": "tag", "in": "query"},
                    {"type": "boolean", "description": "Only favorites (true) or non-favorites (false)", "name": "favorite", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BookmarkListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bookmarks"],
                "summary": "Create a bookmark",
                "parameters": [
                    {"description": "Bookmark to create", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreateBookmarkRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.BookmarkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/bookmarks/{id}": {
            "get": {
                "security": [{"BearerToken": []}],
                "produces": ["application/json"],
                "tags": ["Bookmarks"],
                "summary": "Get a bookmark",
                "parameters": [
                    {"type": "string", "description": "Bookmark ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BookmarkResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bookmarks"],
                "summary": "Update a bookmark",
                "parameters": [
                    {"type": "string", "description": "Bookmark ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.UpdateBookmarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BookmarkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerToken": []}],
                "tags": ["Bookmarks"],
                "summary": "Delete a bookmark",
                "parameters": [
                    {"type": "string", "description": "Bookmark ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/tags/": {
            "get": {
                "security": [{"BearerToken": []}],
                "produces": ["application/json"],
                "tags": ["Tags"],
                "summary": "List tags",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.TagListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "security": [{"BearerToken": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Instance totals (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/admin/users/{id}/active": {
            "put": {
                "security": [{"BearerToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Enable or disable a user (admin)",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "New state", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.SetActiveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "api.CreateUserRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "username": {"type": "string", "maxLength": 50, "minLength": 3},
                "password": {"type": "string", "maxLength": 72, "minLength": 8},
                "role": {"type": "string", "enum": ["user"]}
            }
        },
        "api.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "api.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "api.CreateBookmarkRequest": {
            "type": "object",
            "required": ["url"],
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "url": {"type": "string", "maxLength": 2048},
                "favorite": {"type": "boolean"},
                "description": {"type": "string", "maxLength": 255},
                "tags": {"type": "array", "maxItems": 255, "items": {"type": "string"}}
            }
        },
        "api.UpdateBookmarkRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "url": {"type": "string", "maxLength": 2048},
                "favorite": {"type": "boolean"},
                "description": {"type": "string", "maxLength": 255},
                "tags": {"type": "array", "maxItems": 255, "items": {"type": "string"}}
            }
        },
        "api.BookmarkResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "url": {"type": "string"},
                "favorite": {"type": "boolean"},
                "description": {"type": "string"},
                "favicon_url": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "owner_id": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "api.BookmarkListResponse": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "size": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/api.BookmarkResponse"}}
            }
        },
        "api.TagResponse": {
            "type": "object",
            "properties": {
                "slug": {"type": "string"},
                "name": {"type": "string"},
                "bookmark_count": {"type": "integer"}
            }
        },
        "api.TagListResponse": {
            "type": "object",
            "properties": {
                "tags": {"type": "array", "items": {"$ref": "#/definitions/api.TagResponse"}}
            }
        },
        "api.StatsResponse": {
            "type": "object",
            "properties": {
                "users": {"type": "integer"},
                "bookmarks": {"type": "integer"}
            }
        },
        "api.SetActiveRequest": {
            "type": "object",
            "required": ["active"],
            "properties": {"active": {"type": "boolean"}}
        }
    },
    "securityDefinitions": {
        "BearerToken": {
            "description": "Type \"Bearer\" followed by a space and the access token from /user/token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bookmarks API",
	Description:      "Personal bookmark manager. Authenticate with a bearer token from /user/token.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
