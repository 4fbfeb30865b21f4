// Package apigw serves the upgrade-user operation as an API Gateway proxy
// Lambda handler.
package apigw

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/boycottpro/users/internal/common"
	"github.com/boycottpro/users/internal/logging"
	"github.com/boycottpro/users/internal/server/auth"
	"github.com/boycottpro/users/internal/server/models"
	"github.com/boycottpro/users/internal/server/services"
)

const (
	MsgUpgraded          = "User upgraded to premium successfully!"
	MsgUnauthorized      = "Unauthorized"
	MsgBadRequest        = "sorry, there was an error processing your request"
	DevMsgInvalidBody    = "Invalid request body or missing fields"
	MsgNotFound          = "User not found or upgrade failed"
	MsgTransactionFailed = "Transaction failed: "
)

type Upgrader interface {
	Upgrade(ctx context.Context, userID string, form *models.UpgradeForm) (*services.UpgradeOutcome, error)
}

type Handler struct {
	resolver auth.SubjectResolver
	upgrader Upgrader
	logger   logging.Logger
	echoUser bool
}

// NewHandler builds the handler. With echoUser set, a successful upgrade
// responds with the redacted user record instead of a confirmation message.
func NewHandler(resolver auth.SubjectResolver, upgrader Upgrader, logger logging.Logger, echoUser bool) *Handler {
	return &Handler{
		resolver: resolver,
		upgrader: upgrader,
		logger:   logger.With("module", "apigw"),
		echoUser: echoUser,
	}
}

// Handle is the Lambda entry point. Identity and body problems are answered
// without touching the store. The returned error is non-nil only when a
// response body cannot be encoded.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logging.WithLambda(ctx, h.logger)

	sub, err := h.resolver.Resolve(req)
	if err != nil {
		log.Warn(ctx, "request without verified subject", "error", err)
		return respond(http.StatusUnauthorized, models.NewResponseMessage(http.StatusUnauthorized, MsgUnauthorized, ""))
	}
	log = log.With("user_id", sub)

	body, err := requestBody(req)
	if err != nil {
		log.Warn(ctx, "undecodable request body", "error", err)
		return badRequest()
	}

	form, err := models.ParseUpgradeForm(body)
	if err != nil {
		log.Warn(ctx, "invalid upgrade form", "error", err)
		return badRequest()
	}

	outcome, err := h.upgrader.Upgrade(ctx, sub, form)
	if err == nil && !outcome.Completed() {
		err = fmt.Errorf("%w: upgrade did not complete", common.ErrStoreFailure)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warn(ctx, "user not found")
			return respond(http.StatusNotFound, models.NewResponseMessage(http.StatusNotFound, MsgNotFound, MsgNotFound))
		}

		log.Error(ctx, "upgrade failed", "error", err, "user_upgraded", outcome != nil && outcome.User != nil)
		msg := models.NewResponseMessage(http.StatusInternalServerError, MsgTransactionFailed+err.Error(), "")
		if outcome != nil {
			msg.Steps = outcome.Reports()
		}
		return respond(http.StatusInternalServerError, msg)
	}

	for _, step := range outcome.Steps {
		if step.Err != nil {
			log.Warn(ctx, "step succeeded with incomplete result", "step", step.Name, "error", step.Err)
		}
	}

	log.Info(ctx, "user upgraded",
		"boycotts", len(form.UserBoycotts),
		"causes", len(form.UserCauses))

	if h.echoUser && outcome.User != nil {
		return respond(http.StatusOK, outcome.User)
	}
	return respond(http.StatusOK, models.NewResponseMessage(http.StatusOK, MsgUpgraded, ""))
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return b, nil
}

func badRequest() (events.APIGatewayProxyResponse, error) {
	return respond(http.StatusBadRequest, models.NewResponseMessage(http.StatusBadRequest, MsgBadRequest, DevMsgInvalidBody))
}
