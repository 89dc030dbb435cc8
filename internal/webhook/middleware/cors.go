package middleware

import "net/http"

// CORS stamps the permissive origin headers on every response and answers
// OPTIONS preflights itself. The provider never sends preflights; browsers
// poking the endpoint do.
type CORS struct {
	allowedHeaders string
	allowedMethods string
}

func NewCORS() *CORS {
	return &CORS{
		allowedHeaders: "authorization, x-client-info, apikey, content-type, stripe-signature",
		allowedMethods: "POST, OPTIONS",
	}
}

func (c *CORS) CreateHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", c.allowedHeaders)
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", c.allowedMethods)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
