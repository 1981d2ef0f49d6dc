// Package docs 提供 swagger 文档，可用 go generate ./cmd/studio 重新生成.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Feya Bloom Studio",
            "email": "feya.bloom.design@gmail.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/license/mit/"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health/db": {
            "get": {"produces": ["application/json"], "tags": ["健康检查"], "summary": "数据库健康检查", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/health/storage": {
            "get": {"produces": ["application/json"], "tags": ["健康检查"], "summary": "对象存储健康检查", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/gallery": {
            "get": {
                "produces": ["application/json"],
                "tags": ["图库"],
                "summary": "公开图库",
                "parameters": [{"type": "string", "description": "主分类或分类", "name": "category", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ProjectsResponse"}}}
            }
        },
        "/gallery/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["图库"],
                "summary": "公开项目详情",
                "parameters": [{"type": "string", "description": "项目 ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/contact": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["联系"],
                "summary": "发送联系表单",
                "parameters": [{"description": "表单", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ContactRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ContactResponse"}},
                    "400": {"description": "Bad Request"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/auth/me": {
            "get": {"produces": ["application/json"], "tags": ["认证"], "summary": "当前用户", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.MeResponse"}}, "401": {"description": "Unauthorized"}}}
        },
        "/media": {
            "get": {
                "produces": ["application/json"],
                "tags": ["媒体库"],
                "summary": "列举目录",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "query"},
                    {"type": "string", "name": "path", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "accept", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["媒体库"], "summary": "删除文件", "responses": {"200": {"description": "OK"}}}
        },
        "/media/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["媒体库"],
                "summary": "上传文件",
                "parameters": [
                    {"type": "file", "name": "files", "in": "formData", "required": true},
                    {"type": "string", "name": "bucket", "in": "formData"},
                    {"type": "string", "name": "path", "in": "formData"},
                    {"type": "string", "name": "profile", "in": "formData"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "413": {"description": "Request Entity Too Large"}}
            }
        },
        "/media/rename": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["媒体库"], "summary": "重命名文件", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/media/move": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["媒体库"], "summary": "移动文件", "responses": {"200": {"description": "OK"}}}
        },
        "/media/intents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["媒体库"],
                "summary": "移动意图列表",
                "parameters": [
                    {"type": "boolean", "name": "open", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.IntentsResponse"}}}
            }
        },
        "/media/intents/reconcile": {
            "post": {"produces": ["application/json"], "tags": ["媒体库"], "summary": "补偿移动意图", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ReconcileResult"}}}}
        },
        "/projects": {
            "get": {"produces": ["application/json"], "tags": ["项目"], "summary": "项目列表", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["项目"], "summary": "新建项目", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        }
    },
    "definitions": {
        "types.ContactRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "types.ContactResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}
            }
        },
        "types.IntentsResponse": {
            "type": "object",
            "properties": {
                "intents": {"type": "array", "items": {"$ref": "#/definitions/model.MoveIntent"}},
                "total": {"type": "integer"}
            }
        },
        "model.MoveIntent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "bucket": {"type": "string"},
                "src_key": {"type": "string"},
                "dst_key": {"type": "string"},
                "status": {"type": "string"},
                "attempts": {"type": "integer"},
                "last_error": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "types.ReconcileResult": {
            "type": "object",
            "properties": {
                "checked": {"type": "integer"},
                "done": {"type": "integer"},
                "failed": {"type": "integer"},
                "open": {"type": "integer"}
            }
        },
        "types.MeResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "is_admin": {"type": "boolean"}
            }
        },
        "types.ProjectsResponse": {
            "type": "object",
            "properties": {
                "projects": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Feya Bloom Studio API",
	Description:      "作品集站点后端：媒体库、项目目录、公开图库与联系表单.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
