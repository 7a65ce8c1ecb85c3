package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",                    // local dev
	"https://sunshinecoast4wd.com.au",          // storefront
	"https://www.sunshinecoast4wd.com.au",      // storefront www
	"https://sunshine-coast-4wd.vercel.app",    // Vercel preview
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Booking-Session", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Booking-Session"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
