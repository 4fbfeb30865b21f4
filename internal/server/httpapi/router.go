// Package httpapi exposes the Lambda handler over plain HTTP for local
// development. It verifies bearer tokens itself, then hands the request to
// the same apigw.Handler the Lambda runtime calls.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/boycottpro/users/internal/common"
	"github.com/boycottpro/users/internal/server/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// LambdaHandler is the signature of apigw.Handler.Handle.
type LambdaHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

type contextKey string

const contextSubjectKey contextKey = "sub"

const maxBodyBytes = 1 << 20

// NewRouter mounts POST /users/upgrade behind bearer-token authentication.
func NewRouter(handle LambdaHandler, jwtSecret string, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(requireAuth([]byte(jwtSecret))).Post("/users/upgrade", proxy(handle))

	return r
}

func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			sub, err := auth.ParseSubject(token, secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), contextSubjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

// proxy translates r into an API Gateway proxy event. A request without a
// verified subject is still forwarded, with an empty authorizer, so the
// handler produces its own 401.
func proxy(handle LambdaHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}

		req := events.APIGatewayProxyRequest{
			Resource:   "/users/upgrade",
			Path:       r.URL.Path,
			HTTPMethod: r.Method,
			Headers:    flattenHeaders(r.Header),
			Body:       string(body),
			RequestContext: events.APIGatewayProxyRequestContext{
				RequestID:  uuid.NewString(),
				HTTPMethod: r.Method,
				Path:       r.URL.Path,
			},
		}
		if sub, ok := r.Context().Value(contextSubjectKey).(string); ok && sub != "" {
			req.RequestContext.Authorizer = auth.ClaimsAuthorizer(sub)
		}

		resp, err := handle(r.Context(), req)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	}
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
