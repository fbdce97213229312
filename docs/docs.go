// Package docs registers the storefront OpenAPI document with swag.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/catalog/products": {
            "get": {
                "tags": ["catalog"],
                "summary": "List catalog products",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "category", "in": "query", "description": "Category name; \"All\" or empty lists every category"},
                    {"type": "string", "name": "q", "in": "query", "description": "Case-insensitive name search", "maxLength": 100},
                    {"type": "string", "name": "sort", "in": "query", "enum": ["id", "name", "category", "created_at"]},
                    {"type": "string", "name": "order", "in": "query", "enum": ["asc", "desc"]},
                    {"type": "integer", "name": "page", "in": "query", "minimum": 1},
                    {"type": "integer", "name": "page_size", "in": "query", "minimum": 1, "maximum": 100}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/catalog/products/{id}": {
            "get": {
                "tags": ["catalog"],
                "summary": "Get a product with its related products",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/catalog/products/{id}/listing-prices": {
            "get": {
                "tags": ["catalog"],
                "summary": "Marketplace listing prices for a product",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/catalog/categories": {
            "get": {
                "tags": ["catalog"],
                "summary": "List product categories",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/cart": {
            "get": {
                "tags": ["cart"],
                "summary": "Get the session cart",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/session"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "delete": {
                "tags": ["cart"],
                "summary": "Empty the session cart",
                "parameters": [{"$ref": "#/parameters/session"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/cart/items": {
            "post": {
                "tags": ["cart"],
                "summary": "Add a product to the cart",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/session"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/cart.AddItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/cart/items/{id}": {
            "put": {
                "tags": ["cart"],
                "summary": "Set a cart line quantity; 0 removes the line",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/session"},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/cart.UpdateItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "delete": {
                "tags": ["cart"],
                "summary": "Remove a cart line",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/session"},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/shipping/address/{postalCode}": {
            "get": {
                "tags": ["shipping"],
                "summary": "Look up an address by postal code",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "postalCode", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/shipping/quotes": {
            "post": {
                "tags": ["shipping"],
                "summary": "Calculate shipping options for the cart or a single product",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/session"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/checkout.QuoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/checkout/orders": {
            "post": {
                "tags": ["checkout"],
                "summary": "Submit an order and get the WhatsApp handoff link",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/session"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/checkout.SubmitOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/checkout/channel": {
            "post": {
                "tags": ["checkout"],
                "summary": "Resolve where a product page order goes",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/checkout.ChannelRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        }
    },
    "parameters": {
        "session": {"type": "string", "name": "X-Session-ID", "in": "header", "description": "Shopper session id"}
    },
    "definitions": {
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorInfo"},
                "meta": {"$ref": "#/definitions/dto.Meta"}
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "PRODUCT_NOT_FOUND"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationDetail"}}
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "cart.AddItemRequest": {
            "type": "object",
            "required": ["product_id"],
            "properties": {
                "product_id": {"type": "integer", "minimum": 1},
                "quantity": {"type": "integer", "minimum": 1}
            }
        },
        "cart.UpdateItemRequest": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer", "minimum": 0}
            }
        },
        "checkout.QuoteRequest": {
            "type": "object",
            "required": ["postal_code"],
            "properties": {
                "postal_code": {"type": "string", "example": "12010-000"},
                "product_id": {"type": "integer", "minimum": 1},
                "quantity": {"type": "integer", "minimum": 1}
            }
        },
        "checkout.SubmitOrderRequest": {
            "type": "object",
            "required": ["customer_name", "house_number"],
            "properties": {
                "customer_name": {"type": "string", "maxLength": 200},
                "house_number": {"type": "string", "maxLength": 20},
                "postal_code": {"type": "string"},
                "quote_id": {"type": "string"},
                "skip_shipping": {"type": "boolean"},
                "product_id": {"type": "integer", "minimum": 1},
                "quantity": {"type": "integer", "minimum": 1}
            }
        },
        "checkout.ChannelRequest": {
            "type": "object",
            "required": ["product_id", "postal_code"],
            "properties": {
                "product_id": {"type": "integer", "minimum": 1},
                "quantity": {"type": "integer", "minimum": 1},
                "postal_code": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Patty Crochê Storefront API",
	Description:      "Catalog, cart, shipping quotes and order submission for the Patty Crochê shop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
