// Package auth resolves the verified caller identity of an upgrade request.
//
// The API gateway authorizer verifies the bearer token before the function
// runs and passes its claims in the request context; the handler only reads
// the subject from there. Path parameters are caller-controlled and are never
// used as an identity source.
package auth

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/boycottpro/users/internal/common"
)

// SubjectResolver returns the verified subject of req.
type SubjectResolver interface {
	Resolve(req events.APIGatewayProxyRequest) (string, error)
}

// ClaimsResolver reads the "sub" claim placed by an API Gateway authorizer.
// Both the Cognito user pool shape (authorizer.claims) and the JWT
// authorizer shape (authorizer.jwt.claims) are understood.
type ClaimsResolver struct{}

func (ClaimsResolver) Resolve(req events.APIGatewayProxyRequest) (string, error) {
	authorizer := req.RequestContext.Authorizer
	if authorizer == nil {
		return "", common.ErrUnauthorized
	}

	if sub := subjectFrom(authorizer["claims"]); sub != "" {
		return sub, nil
	}
	if jwtCtx, ok := authorizer["jwt"].(map[string]any); ok {
		if sub := subjectFrom(jwtCtx["claims"]); sub != "" {
			return sub, nil
		}
	}

	return "", common.ErrUnauthorized
}

func subjectFrom(claims any) string {
	var sub string
	switch c := claims.(type) {
	case map[string]any:
		sub, _ = c["sub"].(string)
	case map[string]string:
		sub = c["sub"]
	}
	return strings.TrimSpace(sub)
}

// ClaimsAuthorizer builds the authorizer context ClaimsResolver reads, for
// adapters that verify the token themselves.
func ClaimsAuthorizer(subject string) map[string]any {
	return map[string]any{
		"claims": map[string]any{"sub": subject},
	}
}
