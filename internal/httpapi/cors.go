package httpapi

import (
	"github.com/rs/cors"
)

// Cors allows browser clients from origins to reach both the REST API and
// the grpc-web bridge.
func Cors(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Grpc-Web", "X-User-Agent"},
		ExposedHeaders: []string{"Grpc-Status", "Grpc-Message"},
		MaxAge:         600,
	})
}
