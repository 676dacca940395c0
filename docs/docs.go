// Package docs registra el documento OpenAPI que sirve /swagger/doc.json.
//
// Se mantiene a mano a partir de las anotaciones godoc de los handlers
// (@Router, @Param, @Success...). Con swag instalado, `swag init -g cmd/api/main.go`
// lo regenera. router_test verifica que cada ruta montada en chi esté documentada.
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
        "/abuse-reports": {
            "post": {
                "summary": "Reportar maltrato animal",
                "tags": [
                    "abuse-reports"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Descripción (máx 2000) y referencias de fotos/videos",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/abusereports.submitRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/abusereports.ReportResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "get": {
                "summary": "Listar denuncias",
                "description": "El denunciante ve solo las suyas; el staff ve todas.",
                "tags": [
                    "abuse-reports"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, approved o rejected",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/abusereports.ReportResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/abuse-reports/{reportID}": {
            "get": {
                "summary": "Detalle de denuncia",
                "tags": [
                    "abuse-reports"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la denuncia",
                        "name": "reportID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/abusereports.ReportResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/abuse-reports/{id}/status": {
            "patch": {
                "summary": "Cambiar estado (solicitud, cita o reporte)",
                "description": "` + "`" + `rejection_reason` + "`" + ` es obligatorio si status=rejected. approved/rejected (y cancelled/completed en citas) son terminales.",
                "tags": [
                    "workflow"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev: user, staff o admin",
                        "name": "X-Debug-User-Role",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "ID de la entidad",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Nuevo estado",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/workflow.transitionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "citas y reportes devuelven AppointmentResponse / ReportResponse",
                        "schema": {
                            "$ref": "#/definitions/adoptions.RequestResponse"
                        }
                    },
                    "400": {
                        "description": "invalid status / missing reason",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "transición no permitida",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/adoption-requests/{id}/status": {
            "patch": {
                "summary": "Cambiar estado (solicitud, cita o reporte)",
                "description": "` + "`" + `rejection_reason` + "`" + ` es obligatorio si status=rejected. approved/rejected (y cancelled/completed en citas) son terminales.",
                "tags": [
                    "workflow"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev: user, staff o admin",
                        "name": "X-Debug-User-Role",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "ID de la entidad",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Nuevo estado",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/workflow.transitionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "citas y reportes devuelven AppointmentResponse / ReportResponse",
                        "schema": {
                            "$ref": "#/definitions/adoptions.RequestResponse"
                        }
                    },
                    "400": {
                        "description": "invalid status / missing reason",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "transición no permitida",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/animals": {
            "get": {
                "summary": "Listar todos los animales (staff)",
                "tags": [
                    "animals"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Texto de búsqueda libre en nombre/raza",
                        "name": "q",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/animals.animalResponse"
                            }
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "post": {
                "summary": "Crear perfil de animal",
                "description": "Si viene ` + "`" + `device_id` + "`" + `, primero se registra el collar en el servicio de tracking; si falla, el perfil no se crea (502).",
                "tags": [
                    "animals"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev: user, staff o admin",
                        "name": "X-Debug-User-Role",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Perfil del animal",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/animals.animalRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/animals/{animalID}": {
            "put": {
                "summary": "Actualizar perfil de animal",
                "description": "Si cambia ` + "`" + `device_id` + "`" + `, se actualiza el device en el tracker antes de guardar.",
                "tags": [
                    "animals"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Perfil del animal",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/animals.animalRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Borrar animal",
                "tags": [
                    "animals"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/animals/{animalID}/adopted": {
            "post": {
                "summary": "Marcar animal como adoptado",
                "tags": [
                    "animals"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/animals/{animalID}/location": {
            "get": {
                "summary": "Última posición del collar",
                "tags": [
                    "animals"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.positionResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/appointments": {
            "post": {
                "summary": "Agendar cita de adopción",
                "description": "La solicitud debe estar aprobada y sin otra cita activa (pending/confirmed). Notifica al adoptante en user.<id>.",
                "tags": [
                    "appointments"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev: user, staff o admin",
                        "name": "X-Debug-User-Role",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Fecha >= hoy y hora HH:MM",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/appointments.scheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/appointments.AppointmentResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            },
            "get": {
                "summary": "Citas agendadas y solicitudes aprobadas sin cita",
                "tags": [
                    "appointments"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/appointments.overviewResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/admin/appointments/{appointmentID}": {
            "delete": {
                "summary": "Borrar cita",
                "tags": [
                    "appointments"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la cita",
                        "name": "appointmentID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/appointments/{id}/status": {
            "patch": {
                "summary": "Cambiar estado (solicitud, cita o reporte)",
                "description": "` + "`" + `rejection_reason` + "`" + ` es obligatorio si status=rejected. approved/rejected (y cancelled/completed en citas) son terminales.",
                "tags": [
                    "workflow"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev: user, staff o admin",
                        "name": "X-Debug-User-Role",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "ID de la entidad",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Nuevo estado",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/workflow.transitionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "citas y reportes devuelven AppointmentResponse / ReportResponse",
                        "schema": {
                            "$ref": "#/definitions/adoptions.RequestResponse"
                        }
                    },
                    "400": {
                        "description": "invalid status / missing reason",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "transición no permitida",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "summary": "Dashboard del refugio",
                "tags": [
                    "dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Solo en modo dev: user, staff o admin",
                        "name": "X-Debug-User-Role",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "description": "Año de las series mensuales (default: año actual)",
                        "name": "year",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dashboard.Stats"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/admin/dashboard/export": {
            "get": {
                "summary": "Dashboard en xlsx",
                "tags": [
                    "dashboard"
                ],
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Año (default: actual)",
                        "name": "year",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/adoption-requests": {
            "post": {
                "summary": "Enviar solicitud de adopción",
                "description": "Requiere perfil completo. El animal queda reservado (is_temporarily_adopted) hasta que el staff decida.",
                "tags": [
                    "adoptions"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Solicitud; valid_id_ref y selfie_with_id_ref vienen de POST /uploads",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/adoptions.submitRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/adoptions.RequestResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "get": {
                "summary": "Listar solicitudes de adopción",
                "description": "El adoptante ve solo las suyas; el staff ve todas.",
                "tags": [
                    "adoption-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending, approved o rejected",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/adoptions.RequestResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/adoption-requests/{requestID}": {
            "get": {
                "summary": "Detalle de solicitud de adopción",
                "tags": [
                    "adoption-requests"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la solicitud",
                        "name": "requestID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adoptions.RequestResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/animals": {
            "get": {
                "summary": "Listar animales disponibles",
                "description": "Animales no adoptados ni reservados. ` + "`" + `q` + "`" + ` filtra por nombre o raza.",
                "tags": [
                    "animals"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Texto de búsqueda libre en nombre/raza",
                        "name": "q",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/animals.animalResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/animals/{animalID}": {
            "get": {
                "summary": "Detalle de animal",
                "tags": [
                    "animals"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/appointments": {
            "get": {
                "summary": "Mis citas",
                "tags": [
                    "appointments"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/appointments.entryResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/chats/contacts": {
            "get": {
                "summary": "Contactos con último mensaje, no leídos y presencia",
                "tags": [
                    "chat"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/chat.contactResponse"
                            }
                        }
                    }
                }
            }
        },
        "/chats/mark-as-read/{contactID}": {
            "post": {
                "summary": "Marcar como leídos los mensajes de un contacto",
                "tags": [
                    "chat"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID del contacto",
                        "name": "contactID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/chat.countResponse"
                        }
                    }
                }
            }
        },
        "/chats/unread-count": {
            "get": {
                "summary": "Mensajes sin leer",
                "tags": [
                    "chat"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/chat.countResponse"
                        }
                    }
                }
            }
        },
        "/chats/{contactID}/messages": {
            "get": {
                "summary": "Conversación con un contacto",
                "description": "Devuelve el hilo en orden cronológico y marca como leídos los mensajes del contacto hacia mí.",
                "tags": [
                    "chat"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "ID del contacto",
                        "name": "contactID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/chat.messageResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "post": {
                "summary": "Enviar mensaje",
                "description": "Requiere ` + "`" + `message` + "`" + ` o ` + "`" + `attachment_ref` + "`" + ` (imagen: jpeg/jpg/png/gif, video: mp4/avi/mkv/mov). Se publica en chat.<contactID>.",
                "tags": [
                    "chat"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "ID del receptor",
                        "name": "contactID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Mensaje",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/chat.sendRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/chat.messageResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/me": {
            "get": {
                "summary": "Mi usuario",
                "description": "Lo crea en el primer acceso a partir de la identidad autenticada.",
                "tags": [
                    "users"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.userResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/me/profile": {
            "put": {
                "summary": "Actualizar mi perfil",
                "description": "El perfil completo (dirección, teléfono, edad, género, estado civil) es requisito para pedir una adopción.",
                "tags": [
                    "users"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Perfil",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/users.profileRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.userResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/notifications": {
            "get": {
                "summary": "Listar mis notificaciones",
                "description": "Ordenadas por fecha de creación descendente.",
                "tags": [
                    "notifications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token en producción",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/notifications.notificationResponse"
                            }
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "delete": {
                "summary": "Borrar todas mis notificaciones",
                "tags": [
                    "notifications"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/notifications.countResponse"
                        }
                    }
                }
            }
        },
        "/notifications/read-all": {
            "post": {
                "summary": "Marcar todas como leídas",
                "tags": [
                    "notifications"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/notifications.countResponse"
                        }
                    }
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "summary": "Notificaciones sin leer",
                "tags": [
                    "notifications"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/notifications.countResponse"
                        }
                    }
                }
            }
        },
        "/notifications/{notificationID}": {
            "delete": {
                "summary": "Borrar notificación",
                "tags": [
                    "notifications"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la notificación",
                        "name": "notificationID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/notifications/{notificationID}/read": {
            "post": {
                "summary": "Marcar notificación como leída",
                "tags": [
                    "notifications"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID de la notificación",
                        "name": "notificationID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/uploads": {
            "post": {
                "summary": "Subir archivo",
                "description": "Guarda el archivo en el almacenamiento configurado y devuelve su referencia.",
                "tags": [
                    "uploads"
                ],
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "animal | adoption_document | abuse_photo | abuse_video | message_image | message_video | profile_photo",
                        "name": "kind",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "file",
                        "description": "Archivo",
                        "name": "file",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/uploads.Response"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/ws": {
            "get": {
                "summary": "Stream de eventos en tiempo real",
                "description": "Upgrade a websocket. Cada frame es {channel, event, payload}. Sin ?channel se suscriben user.<id> y chat.<id>.",
                "tags": [
                    "realtime"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev, ID de usuario para depuración",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi",
                        "description": "Canales (repetible)",
                        "name": "channel",
                        "in": "query"
                    }
                ],
                "responses": {
                    "101": {
                        "description": "switching protocols",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/httpx.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "abusereports.ReportResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "user_id": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "photos": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "videos": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "status": {
                    "type": "string"
                },
                "rejection_reason": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "abusereports.submitRequest": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "photo_refs": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "video_refs": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "adoptions.RequestResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "user_id": {
                    "type": "string"
                },
                "animal_id": {
                    "type": "string"
                },
                "answers": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "valid_id_ref": {
                    "type": "string"
                },
                "selfie_with_id_ref": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "rejection_reason": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "adoptions.submitRequest": {
            "type": "object",
            "properties": {
                "animal_id": {
                    "type": "string"
                },
                "answers": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "valid_id_ref": {
                    "type": "string"
                },
                "selfie_with_id_ref": {
                    "type": "string"
                }
            }
        },
        "animals.animalRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "age": {
                    "type": "integer"
                },
                "species": {
                    "type": "string"
                },
                "breed": {
                    "type": "string"
                },
                "birth_date": {
                    "type": "string"
                },
                "color": {
                    "type": "string"
                },
                "gender": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "image_ref": {
                    "type": "string"
                },
                "medical_records": {
                    "type": "string"
                },
                "device_id": {
                    "type": "string"
                }
            }
        },
        "animals.animalResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "age": {
                    "type": "integer"
                },
                "species": {
                    "type": "string"
                },
                "breed": {
                    "type": "string"
                },
                "birth_date": {
                    "type": "string"
                },
                "color": {
                    "type": "string"
                },
                "gender": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "image_ref": {
                    "type": "string"
                },
                "medical_records": {
                    "type": "string"
                },
                "is_temporarily_adopted": {
                    "type": "boolean"
                },
                "is_adopted": {
                    "type": "boolean"
                },
                "device_id": {
                    "type": "string"
                },
                "tracking_ref": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "animals.positionResponse": {
            "type": "object",
            "properties": {
                "device_ref": {
                    "type": "string"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "speed": {
                    "type": "number"
                },
                "fix_time": {
                    "type": "string"
                }
            }
        },
        "appointments.AppointmentResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "adoption_request_id": {
                    "type": "string"
                },
                "appointment_date": {
                    "type": "string"
                },
                "appointment_time": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "rejection_reason": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "appointments.entryResponse": {
            "type": "object",
            "properties": {
                "appointment": {
                    "$ref": "#/definitions/appointments.AppointmentResponse"
                },
                "adoption_request_id": {
                    "type": "string"
                },
                "adopter": {
                    "$ref": "#/definitions/appointments.partyResponse"
                },
                "animal": {
                    "$ref": "#/definitions/appointments.partyResponse"
                }
            }
        },
        "appointments.overviewResponse": {
            "type": "object",
            "properties": {
                "appointments": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appointments.entryResponse"
                    }
                },
                "approved_requests_without_appointment": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appointments.entryResponse"
                    }
                }
            }
        },
        "appointments.partyResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "image_ref": {
                    "type": "string"
                }
            }
        },
        "appointments.scheduleRequest": {
            "type": "object",
            "properties": {
                "adoption_request_id": {
                    "type": "string"
                },
                "appointment_date": {
                    "type": "string"
                },
                "appointment_time": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "chat.contactResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "profile_photo_ref": {
                    "type": "string"
                },
                "last_message": {
                    "$ref": "#/definitions/chat.messageResponse"
                },
                "preview": {
                    "type": "string"
                },
                "unread_count": {
                    "type": "integer"
                },
                "online": {
                    "type": "boolean"
                }
            }
        },
        "chat.countResponse": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                }
            }
        },
        "chat.messageResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "sender_id": {
                    "type": "string"
                },
                "receiver_id": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "image_path": {
                    "type": "string"
                },
                "video_path": {
                    "type": "string"
                },
                "unread": {
                    "type": "boolean"
                },
                "seen": {
                    "type": "boolean"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "chat.sendRequest": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "attachment_ref": {
                    "type": "string"
                }
            }
        },
        "dashboard.Bucket": {
            "type": "object",
            "properties": {
                "label": {
                    "type": "string"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "dashboard.Stats": {
            "type": "object",
            "properties": {
                "year": {
                    "type": "integer"
                },
                "available_years": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "total_animals": {
                    "type": "integer"
                },
                "adopted_animals": {
                    "type": "integer"
                },
                "pending_reports": {
                    "type": "integer"
                },
                "species": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dashboard.Bucket"
                    }
                },
                "adoptions_per_month": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dashboard.Bucket"
                    }
                },
                "reports_per_month": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dashboard.Bucket"
                    }
                }
            }
        },
        "httpx.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "notifications.countResponse": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                }
            }
        },
        "notifications.notificationResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "user_id": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "image_path": {
                    "type": "string"
                },
                "read_at": {
                    "type": "string"
                },
                "appointment_date": {
                    "type": "string"
                },
                "appointment_time": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "uploads.Response": {
            "type": "object",
            "properties": {
                "ref": {
                    "type": "string"
                }
            }
        },
        "users.profileRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "phone_number": {
                    "type": "string"
                },
                "age": {
                    "type": "integer"
                },
                "gender": {
                    "type": "string"
                },
                "civil_status": {
                    "type": "string"
                },
                "profile_photo_ref": {
                    "type": "string"
                }
            }
        },
        "users.userResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "phone_number": {
                    "type": "string"
                },
                "age": {
                    "type": "integer"
                },
                "gender": {
                    "type": "string"
                },
                "civil_status": {
                    "type": "string"
                },
                "profile_photo_ref": {
                    "type": "string"
                },
                "profile_complete": {
                    "type": "boolean"
                },
                "last_activity_at": {
                    "type": "string"
                }
            }
        },
        "workflow.transitionRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "rejection_reason": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Noah's Ark Shelter API",
	Description:      "Backend del refugio: adopciones, citas, denuncias, notificaciones y chat.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
