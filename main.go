package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional in deployed environments — env vars may come from the host.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] No .env file loaded: %v", err)
	}

	h := &Handler{
		db:              getDBPool(),
		rendererBaseURL: os.Getenv("RENDERER_URL"),
		renderTimeout:   renderTimeoutFromEnv(),
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("[main] Server failed to start: %v", err)
	}
}
