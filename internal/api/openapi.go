package api

// Minimal OpenAPI documents served at /swagger.json.

const storefrontOpenAPISpec = `{
  "openapi": "3.0.0",
  "info": {
    "title": "Storefront API",
    "version": "1.0.0"
  },
  "paths": {
    "/health": {
      "get": {
        "summary": "Health check",
        "responses": {
          "200": {
            "description": "Service is healthy",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/HealthResponse" }
              }
            }
          }
        }
      }
    },
    "/api/products": {
      "get": {
        "summary": "List the catalog",
        "responses": {
          "200": {
            "description": "Products ordered by id",
            "content": {
              "application/json": {
                "schema": {
                  "type": "array",
                  "items": { "$ref": "#/components/schemas/Product" }
                }
              }
            }
          }
        }
      }
    },
    "/orders": {
      "post": {
        "summary": "Place an order and export its lines",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": { "$ref": "#/components/schemas/CheckoutRequest" }
            },
            "application/x-www-form-urlencoded": {
              "schema": {
                "type": "object",
                "properties": {
                  "selectedProducts": { "type": "array", "items": { "type": "string" } },
                  "clienteNombre": { "type": "string" },
                  "clienteEmail": { "type": "string" },
                  "clienteDireccion": { "type": "string" }
                }
              }
            }
          }
        },
        "responses": {
          "201": {
            "description": "Order placed",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/OrderResult" }
              }
            }
          },
          "400": { "description": "Invalid cart or customer" },
          "422": { "description": "No cart entry matched a catalog product" },
          "500": { "description": "Storage failure, or order saved but export failed" }
        }
      }
    },
    "/invoices": {
      "get": {
        "summary": "List invoices with their lines",
        "responses": {
          "200": {
            "description": "Invoices ordered by id",
            "content": {
              "application/json": {
                "schema": {
                  "type": "array",
                  "items": { "$ref": "#/components/schemas/Invoice" }
                }
              }
            }
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "HealthResponse": {
        "type": "object",
        "properties": { "status": { "type": "string" } }
      },
      "Product": {
        "type": "object",
        "properties": {
          "id": { "type": "integer" },
          "name": { "type": "string" },
          "image_ref": { "type": "string" },
          "stock": { "type": "integer" },
          "updatedAtUtc": { "type": "string", "format": "date-time" }
        }
      },
      "Customer": {
        "type": "object",
        "properties": {
          "name": { "type": "string" },
          "email": { "type": "string", "format": "email" },
          "address": { "type": "string" }
        }
      },
      "CheckoutRequest": {
        "type": "object",
        "properties": {
          "cart": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "id": { "type": "integer" },
                "name": { "type": "string" },
                "quantity": { "type": "integer" }
              }
            }
          },
          "customer": { "$ref": "#/components/schemas/Customer" }
        }
      },
      "OrderResult": {
        "type": "object",
        "properties": {
          "orderGroupId": { "type": "integer" },
          "invoiceId": { "type": "integer" },
          "total": { "type": "string" },
          "exportedTo": { "type": "string" },
          "lines": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "id": { "type": "integer" },
                "name": { "type": "string" },
                "quantity": { "type": "integer" },
                "subtotal": { "type": "string" }
              }
            }
          },
          "skipped": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "name": { "type": "string" },
                "quantity": { "type": "integer" },
                "reason": { "type": "string" }
              }
            }
          }
        }
      },
      "Invoice": {
        "type": "object",
        "properties": {
          "invoiceId": { "type": "integer" },
          "orderGroupId": { "type": "integer" },
          "createdAtUtc": { "type": "string", "format": "date-time" },
          "total": { "type": "string" },
          "customer": { "$ref": "#/components/schemas/Customer" },
          "lines": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "product_name": { "type": "string" },
                "image_ref": { "type": "string" },
                "quantity": { "type": "integer" }
              }
            }
          }
        }
      }
    }
  }
}`

const stockOpenAPISpec = `{
  "openapi": "3.0.0",
  "info": {
    "title": "Stock Service API",
    "version": "1.0.0"
  },
  "paths": {
    "/health": {
      "get": {
        "summary": "Health check",
        "responses": { "200": { "description": "Service is healthy" } }
      }
    },
    "/": {
      "get": {
        "summary": "List the catalog",
        "responses": { "200": { "description": "Products ordered by id" } }
      }
    },
    "/fetch-and-save": {
      "post": {
        "summary": "Replace the catalog from the catalog source",
        "responses": {
          "200": {
            "description": "Catalog replaced",
            "content": {
              "application/json": {
                "schema": {
                  "type": "object",
                  "properties": {
                    "count": { "type": "integer" },
                    "products": { "type": "array", "items": { "type": "object" } }
                  }
                }
              }
            }
          },
          "500": { "description": "Catalog source or storage failure" }
        }
      }
    },
    "/update-stock": {
      "post": {
        "summary": "Apply the exported order file to stock",
        "responses": {
          "200": {
            "description": "Reconciliation report",
            "content": {
              "application/json": {
                "schema": { "$ref": "#/components/schemas/ReconciliationReport" }
              }
            }
          },
          "409": { "description": "Another reconciliation pass is running" },
          "422": { "description": "The file has no recognizable header" },
          "500": { "description": "The file could not be archived; body carries error and the partial report" }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "RowOutcome": {
        "type": "object",
        "properties": {
          "line": { "type": "integer" },
          "name": { "type": "string" },
          "quantity": { "type": "integer" },
          "stock": { "type": "integer", "nullable": true },
          "reason": { "type": "string" }
        }
      },
      "ReconciliationReport": {
        "type": "object",
        "properties": {
          "runId": { "type": "string", "format": "uuid" },
          "source": { "type": "string" },
          "sourceFound": { "type": "boolean" },
          "rows": { "type": "integer" },
          "applied": { "type": "array", "items": { "$ref": "#/components/schemas/RowOutcome" } },
          "skipped": { "type": "array", "items": { "$ref": "#/components/schemas/RowOutcome" } },
          "unmatched": { "type": "array", "items": { "$ref": "#/components/schemas/RowOutcome" } },
          "failed": { "type": "array", "items": { "$ref": "#/components/schemas/RowOutcome" } },
          "archivedTo": { "type": "string" }
        }
      }
    }
  }
}`
