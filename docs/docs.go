// Package docs registers the Knowhere OpenAPI document with swag.
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
        "/articles": {
            "get": {"tags": ["articles"], "summary": "List published articles", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Article"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["articles"], "summary": "Create an article",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.articleRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Article"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }}
        },
        "/articles/search": {
            "get": {"tags": ["articles"], "summary": "Search published articles",
                "parameters": [{"type": "string", "name": "q", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Article"}}}}}
        },
        "/articles/tag/{tag}": {
            "get": {"tags": ["articles"], "summary": "List published articles with a tag",
                "parameters": [{"type": "string", "name": "tag", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Article"}}}}}
        },
        "/articles/{slug}": {
            "get": {"tags": ["articles"], "summary": "Get an article by slug",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.ArticleResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }}
        },
        "/articles/{id}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["articles"], "summary": "Update an article",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.articlePatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Article"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["articles"], "summary": "Delete an article with its claps, comments and bookmarks",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/articles/{id}/clap": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["engagement"], "summary": "Get the caller's clap on an article",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["engagement"], "summary": "Clap for an article",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.ClapResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "429": {"description": "Too Many Requests"}
                }}
        },
        "/articles/{id}/comments": {
            "get": {"tags": ["engagement"], "summary": "List an article's comments, oldest first",
                "description": "Comments on a draft are only listed for its author.",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Comment"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }},
            "post": {"security": [{"BearerAuth": []}], "tags": ["engagement"], "summary": "Comment on an article",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/server.CommentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }}
        },
        "/articles/{id}/save": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["engagement"], "summary": "Add an article to the caller's reading list",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["engagement"], "summary": "Remove an article from the caller's reading list",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Get the caller's profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Profile"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Create the caller's profile on first sign-in",
                "responses": {"200": {"description": "OK"}, "201": {"description": "Created"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Update the caller's profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Profile"}}}}
        },
        "/me/articles": {"get": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "List the caller's articles, drafts included", "parameters": [{"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/me/saved": {"get": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "List the caller's reading list", "parameters": [{"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/me/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Author dashboard statistics", "responses": {"200": {"description": "OK"}}}},
        "/me/suggestions": {"get": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Profiles to follow", "responses": {"200": {"description": "OK"}}}},
        "/me/feature-flags": {"get": {"security": [{"BearerAuth": []}], "tags": ["profiles"], "summary": "Configured feature flags and their value for the caller", "responses": {"200": {"description": "OK"}}}},
        "/profiles/{username}": {
            "get": {"tags": ["profiles"], "summary": "Public profile with published totals and follow counts",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/profiles/{username}/articles": {"get": {"tags": ["profiles"], "summary": "Published articles of one author", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/profiles/{username}/followers": {"get": {"tags": ["follows"], "summary": "Profiles following this author, newest first", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ProfileSummary"}}}}}},
        "/profiles/{username}/following": {"get": {"tags": ["follows"], "summary": "Profiles this author follows, newest first", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ProfileSummary"}}}}}},
        "/profiles/{username}/follow": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["follows"], "summary": "Whether the caller follows this author", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["follows"], "summary": "Follow an author", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["follows"], "summary": "Unfollow an author", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/ws/engagement": {"get": {"tags": ["realtime"], "summary": "Live engagement event stream (websocket)", "responses": {"101": {"description": "Switching Protocols"}, "426": {"description": "Upgrade Required"}}}}
    },
    "definitions": {
        "models.ErrorResponse": {"type": "object", "properties": {
            "error": {"type": "string"}, "code": {"type": "string"}, "details": {"type": "string"}}},
        "models.Profile": {"type": "object", "properties": {
            "id": {"type": "string"}, "username": {"type": "string"}, "full_name": {"type": "string"},
            "avatar_url": {"type": "string"}, "bio": {"type": "string"}, "location": {"type": "string"},
            "website": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "models.ProfileSummary": {"type": "object", "properties": {
            "id": {"type": "string"}, "username": {"type": "string"}, "full_name": {"type": "string"},
            "avatar_url": {"type": "string"}}},
        "models.Article": {"type": "object", "properties": {
            "id": {"type": "string"}, "title": {"type": "string"}, "subtitle": {"type": "string"},
            "content": {"type": "string"}, "slug": {"type": "string"}, "author_id": {"type": "string"},
            "author": {"$ref": "#/definitions/models.Profile"}, "published": {"type": "boolean"},
            "featured_image": {"type": "string"}, "tags": {"type": "array", "items": {"type": "string"}},
            "read_time": {"type": "integer"}, "claps_count": {"type": "integer"}, "comments_count": {"type": "integer"},
            "published_at": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "models.Comment": {"type": "object", "properties": {
            "id": {"type": "string"}, "article_id": {"type": "string"}, "user_id": {"type": "string"},
            "content": {"type": "string"}, "parent_id": {"type": "string"},
            "profile": {"$ref": "#/definitions/models.Profile"}, "created_at": {"type": "string"}}},
        "models.Clap": {"type": "object", "properties": {
            "id": {"type": "string"}, "article_id": {"type": "string"}, "user_id": {"type": "string"},
            "count": {"type": "integer"}, "created_at": {"type": "string"}}},
        "server.ArticleResponse": {"type": "object", "properties": {
            "article": {"$ref": "#/definitions/models.Article"},
            "viewer": {"type": "object", "properties": {
                "claps": {"type": "integer"}, "saved": {"type": "boolean"}, "following_author": {"type": "boolean"}}}}},
        "server.ClapResponse": {"type": "object", "properties": {
            "clap": {"$ref": "#/definitions/models.Clap"}, "claps_count": {"type": "integer"}}},
        "server.CommentResponse": {"type": "object", "properties": {
            "comment": {"$ref": "#/definitions/models.Comment"}, "comments_count": {"type": "integer"}}},
        "server.articleRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "subtitle": {"type": "string"}, "content": {"type": "string"},
            "slug": {"type": "string"}, "featured_image": {"type": "string"},
            "tags": {"type": "array", "items": {"type": "string"}}, "read_time": {"type": "integer"},
            "published": {"type": "boolean"}}},
        "server.articlePatchRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "subtitle": {"type": "string"}, "content": {"type": "string"},
            "slug": {"type": "string"}, "featured_image": {"type": "string"},
            "tags": {"type": "array", "items": {"type": "string"}}, "published": {"type": "boolean"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Knowhere API",
	Description:      "Blogging platform API: articles, profiles, follows, claps, comments and reading lists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
