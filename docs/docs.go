package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Call Analyzer Dashboard",
    "description": "Browser session API of the call analysis dashboard",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/session": {
      "get": {
        "tags": ["session"],
        "summary": "Current session",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessionResponse"}}
        }
      },
      "post": {
        "tags": ["session"],
        "summary": "Log in",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"in": "body", "name": "body", "required": true, "description": "Credentials", "schema": {"$ref": "#/definitions/sessionRequest"}}
        ],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessionResponse"}},
          "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
          "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
        }
      },
      "delete": {
        "tags": ["session"],
        "summary": "Log out",
        "responses": {
          "204": {"description": "No Content"}
        }
      }
    },
    "/health": {
      "get": {
        "tags": ["health"],
        "summary": "Liveness probe",
        "responses": {"200": {"description": "OK"}}
      }
    },
    "/health/ready": {
      "get": {
        "tags": ["health"],
        "summary": "Readiness probe",
        "responses": {
          "200": {"description": "OK"},
          "503": {"description": "Service Unavailable"}
        }
      }
    }
  },
  "definitions": {
    "errorResponse": {
      "type": "object",
      "properties": {"error": {"type": "string"}}
    },
    "sessionRequest": {
      "type": "object",
      "required": ["username", "password"],
      "properties": {
        "username": {"type": "string"},
        "password": {"type": "string"}
      }
    },
    "sessionResponse": {
      "type": "object",
      "properties": {
        "authenticated": {"type": "boolean"},
        "state": {"type": "string", "enum": ["anonymous", "authenticating", "authenticated"]},
        "user": {"$ref": "#/definitions/user"}
      }
    },
    "user": {
      "type": "object",
      "properties": {
        "id": {"type": "integer"},
        "username": {"type": "string"},
        "first_name": {"type": "string"},
        "last_name": {"type": "string"},
        "email": {"type": "string"}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
