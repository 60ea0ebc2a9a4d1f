package server

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	// registers the generated spec with swag
	_ "github.com/raysh454/vexora/docs/swagger"
)

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title Vexora API
// @version 0.1
// @description Risk scoring for URLs, messages, images and videos, with scan history and batch jobs.
// @contact.name Vexora Maintainers
// @contact.url https://github.com/raysh454/vexora
// @BasePath /

func swaggerHandler() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
}
