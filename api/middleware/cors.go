package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://localhost:3000", // legacy CRA dev server
	"https://firesight-ai.vercel.app",
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "x-auth-token", "X-Requested-With"},
		ExposedHeaders:   []string{"x-auth-token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
