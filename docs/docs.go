// Package docs holds the generated swagger spec for the scrape engine's
// thin trigger/reader HTTP surface. In a normal build this file is produced
// by `swag init` from the `@title`/`@description`/route annotations in
// cmd/server/main.go and the internal/handler/http/** packages; it is
// checked in here so the swagger UI has something to serve without a
// codegen step at build time.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/jobs": {
            "post": {
                "description": "Validates sources/maxArticles and starts a scraping job in the background.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Trigger a scraping job",
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request"}
                }
            },
            "get": {
                "description": "Paginated job history, optionally filtered by status.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List jobs",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "description": "Fetch a single job by id.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get a job",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/jobs/{id}/logs": {
            "get": {
                "description": "Paginated structured event log for a job.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job logs",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/jobs/{id}/cancel": {
            "post": {
                "description": "Cancels an in-progress job.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Cancel a job",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/articles": {
            "get": {
                "description": "Paginated, filterable list of scraped articles.",
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "List articles",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/articles/{id}": {
            "get": {
                "description": "Fetch a single scraped article by id.",
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "Get an article",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/sources": {
            "get": {
                "description": "List configured news sources.",
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "List sources",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "description": "Create a news source.",
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "Create a source",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/sources/{id}": {
            "get": {
                "description": "Fetch a single source by id.",
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "Get a source",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "description": "Update a news source.",
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "Update a source",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "description": "Delete a news source.",
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "Delete a source",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sources/{id}/test": {
            "post": {
                "description": "Revalidates a source's rss_url by fetching it.",
                "produces": ["application/json"],
                "tags": ["sources"],
                "summary": "Test a source's feed",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/dashboard/metrics": {
            "get": {
                "description": "7-day dashboard rollup: jobs triggered, success rate, articles scraped, average job duration, active jobs, recent errors. Cached for 60s.",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness/readiness summary including DB connectivity.",
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Scrape Engine API",
	Description:      "News-aggregation scraping engine: job lifecycle, source management, and read access to scraped articles.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
