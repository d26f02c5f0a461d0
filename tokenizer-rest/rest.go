// Package tokenizerrest serves the ticketing API over HTTP in console mode
// and through API Gateway in lambda mode, with common middleware.
package tokenizerrest

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/savaki/apigateway"
	tokenizercli "github.com/tokenizer-systems/tokenizer-go/tokenizer-cli"
)

func Middlewares(service tokenizercli.Service, routes chi.Router) chi.Router {
	routes.Use(
		withCORS(),
		withLogger(tokenizercli.Logger(service)),
		middleware.Recoverer,
	)
	return routes
}

func Webserver(service tokenizercli.Service, routes chi.Router) error {
	logger := tokenizercli.Logger(service)

	if tokenizercli.CommonOpts.Console {
		logger.Info().Int("port", tokenizercli.CommonOpts.Port).Msg("starting http server")
		addr := fmt.Sprintf(":%v", tokenizercli.CommonOpts.Port)
		return http.ListenAndServe(addr, routes)
	}

	lambda.Start(apigateway.Wrap(routes, tokenizercli.CommonOpts.Env))
	return nil
}

func withCORS() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Username"},
	})
}

func withLogger(logger zerolog.Logger) func(handler http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logger.WithContext(req.Context())
			req = req.WithContext(ctx)
			handler.ServeHTTP(w, req)
		})
	}
}
