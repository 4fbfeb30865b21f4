package apigw

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/boycottpro/users/internal/common"
	"github.com/boycottpro/users/internal/logging"
	"github.com/boycottpro/users/internal/server/auth"
	"github.com/boycottpro/users/internal/server/models"
	"github.com/boycottpro/users/internal/server/repositories/repomanager"
	"github.com/boycottpro/users/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake store ----

type fakeDynamo struct {
	updates []*dynamodb.UpdateItemInput
	batches []*dynamodb.BatchWriteItemInput

	updateOut *dynamodb.UpdateItemOutput
	updateErr error
	batchErr  map[string]error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
		"user_id":       &types.AttributeValueMemberS{Value: "u1"},
		"email_addr":    &types.AttributeValueMemberS{Value: "email@email.com"},
		"username":      &types.AttributeValueMemberS{Value: "username"},
		"created_ts":    &types.AttributeValueMemberN{Value: "100"},
		"password_hash": &types.AttributeValueMemberS{Value: "$2a$10$hash"},
		"paying_user":   &types.AttributeValueMemberBOOL{Value: true},
	}}}
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batches = append(f.batches, in)
	for table := range in.RequestItems {
		if err := f.batchErr[table]; err != nil {
			return nil, err
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDynamo) calls() int { return len(f.updates) + len(f.batches) }

func (f *fakeDynamo) batchSizes(table string) []int {
	var out []int
	for _, b := range f.batches {
		if reqs, ok := b.RequestItems[table]; ok {
			out = append(out, len(reqs))
		}
	}
	return out
}

// ---- helpers ----

func newTestHandler(api *fakeDynamo, echoUser bool) *Handler {
	m := repomanager.NewDynamoRepositoryManager(api,
		repomanager.Tables{Users: "users", Boycotts: "user_boycotts", Causes: "user_causes"},
		repomanager.BatchOptions{Size: common.DynamoBatchWriteLimit})
	return NewHandler(auth.ClaimsResolver{}, services.NewUpgradeService(m), logging.Nop(), echoUser)
}

func requestFor(sub string, body string) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{Body: body}
	if sub != "" {
		req.RequestContext.Authorizer = auth.ClaimsAuthorizer(sub)
	}
	return req
}

func decode(t *testing.T, resp events.APIGatewayProxyResponse) models.ResponseMessage {
	t.Helper()
	var msg models.ResponseMessage
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &msg))
	return msg
}

func boycottsJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"company_id":"c%d","cause_id":"k%d"}`, i, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ---- tests ----

func TestHandle_EndToEnd(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1",
		`{"user_boycotts":[{"user_id":"spoofed","company_id":"c1","cause_id":"k1"}],"user_causes":[{"user_id":"spoofed","cause_id":"k1"}]}`))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.JSONEq(t, `{"status":200,"message":"User upgraded to premium successfully!","devMsg":null}`, resp.Body)

	require.Len(t, api.updates, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, api.updates[0].Key["user_id"])

	assert.Equal(t, []int{1}, api.batchSizes("user_boycotts"))
	assert.Equal(t, []int{1}, api.batchSizes("user_causes"))
	require.Len(t, api.batches, 2)
	_, boycottsFirst := api.batches[0].RequestItems["user_boycotts"]
	assert.True(t, boycottsFirst, "boycotts are written before causes")

	boycott := api.batches[0].RequestItems["user_boycotts"][0].PutRequest.Item
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, boycott["user_id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "c1#k1"}, boycott["company_cause_id"])

	cause := api.batches[1].RequestItems["user_causes"][0].PutRequest.Item
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, cause["user_id"])
}

func TestHandle_MissingIdentity(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, false)

	req := requestFor("", `{"user_boycotts":[],"user_causes":[]}`)
	req.PathParameters = map[string]string{"user_id": "u1"}

	resp, err := h.Handle(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 401, resp.StatusCode)
	msg := decode(t, resp)
	assert.Equal(t, 401, msg.Status)
	assert.Equal(t, "Unauthorized", msg.Message)
	assert.Zero(t, api.calls())
}

func TestHandle_InvalidBody(t *testing.T) {
	bodies := map[string]string{
		"boycotts absent": `{"user_causes":[]}`,
		"causes absent":   `{"user_boycotts":[]}`,
		"both absent":     `{}`,
		"null body":       `null`,
		"empty body":      ``,
		"malformed":       `{"user_boycotts":[`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			api := newFakeDynamo()
			h := newTestHandler(api, false)

			resp, err := h.Handle(context.Background(), requestFor("u1", body))
			require.NoError(t, err)

			assert.Equal(t, 400, resp.StatusCode)
			msg := decode(t, resp)
			assert.Equal(t, 400, msg.Status)
			require.NotNil(t, msg.DevMsg)
			assert.Contains(t, *msg.DevMsg, "Invalid request body or missing fields")
			assert.Zero(t, api.calls())
		})
	}
}

func TestHandle_EmptyListsOnlyUpdate(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1", `{"user_boycotts":[],"user_causes":[]}`))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, api.updates, 1)
	assert.Empty(t, api.batches)
}

func TestHandle_ThirtyBoycottsTwoCalls(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1",
		`{"user_boycotts":`+boycottsJSON(30)+`,"user_causes":[]}`))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []int{25, 5}, api.batchSizes("user_boycotts"))
	assert.Empty(t, api.batchSizes("user_causes"))
}

func TestHandle_UserNotFound(t *testing.T) {
	api := newFakeDynamo()
	api.updateOut = &dynamodb.UpdateItemOutput{}
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("ghost",
		`{"user_boycotts":[{"company_id":"c1"}],"user_causes":[]}`))
	require.NoError(t, err)

	assert.Equal(t, 404, resp.StatusCode)
	msg := decode(t, resp)
	assert.Equal(t, 404, msg.Status)
	assert.Equal(t, "User not found or upgrade failed", msg.Message)
	assert.Empty(t, api.batches)
}

func TestHandle_UpdateErrorIs500(t *testing.T) {
	api := newFakeDynamo()
	api.updateErr = errors.New("ProvisionedThroughputExceededException")
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1", `{"user_boycotts":[],"user_causes":[]}`))
	require.NoError(t, err)

	assert.Equal(t, 500, resp.StatusCode)
	msg := decode(t, resp)
	assert.Equal(t, 500, msg.Status)
	assert.True(t, strings.HasPrefix(msg.Message, "Transaction failed:"), msg.Message)
	assert.Contains(t, msg.Message, "ProvisionedThroughputExceededException")
}

func TestHandle_PartialFailureIsVisible(t *testing.T) {
	api := newFakeDynamo()
	api.batchErr = map[string]error{"user_causes": errors.New("ValidationException")}
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1",
		`{"user_boycotts":[{"company_id":"c1","cause_id":"k1"}],"user_causes":[{"cause_id":"k1"}]}`))
	require.NoError(t, err)

	assert.Equal(t, 500, resp.StatusCode)
	msg := decode(t, resp)
	assert.True(t, strings.HasPrefix(msg.Message, "Transaction failed:"))
	require.Len(t, msg.Steps, 3)
	assert.Equal(t, "succeeded", msg.Steps[0].Status)
	assert.Equal(t, "succeeded", msg.Steps[1].Status)
	assert.Equal(t, "failed", msg.Steps[2].Status)
	assert.Contains(t, msg.Steps[2].Error, "ValidationException")
}

func TestHandle_Base64Body(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, false)

	req := requestFor("u1", base64.StdEncoding.EncodeToString([]byte(`{"user_boycotts":[],"user_causes":[{"cause_id":"k1"}]}`)))
	req.IsBase64Encoded = true

	resp, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []int{1}, api.batchSizes("user_causes"))

	req.Body = "%%%not-base64"
	resp, err = h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandle_EchoUserRedactsPassword(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, true)

	resp, err := h.Handle(context.Background(), requestFor("u1", `{"user_boycotts":[],"user_causes":[]}`))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var user models.User
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &user))
	assert.Equal(t, "***", user.PasswordHash)
	assert.Equal(t, "email@email.com", user.Email)
	assert.True(t, user.PayingUser)
	assert.NotContains(t, resp.Body, "$2a$10$hash")
}

func TestHandle_SerializationFailure(t *testing.T) {
	orig := marshal
	t.Cleanup(func() { marshal = orig })
	marshal = func(any) ([]byte, error) { return nil, errors.New("boom") }

	h := newTestHandler(newFakeDynamo(), false)
	_, err := h.Handle(context.Background(), requestFor("", ""))
	assert.ErrorIs(t, err, common.ErrSerialization)
}

func TestHandle_MistypedUserAttributeStillWritesRecords(t *testing.T) {
	api := newFakeDynamo()
	api.updateOut.Attributes["created_ts"] = &types.AttributeValueMemberS{Value: "2024-01-01"}
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1",
		`{"user_boycotts":[{"company_id":"c1","cause_id":"k1"}],"user_causes":[{"cause_id":"k1"}]}`))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, api.updates, 1)
	assert.Equal(t, []int{1}, api.batchSizes("user_boycotts"))
	assert.Equal(t, []int{1}, api.batchSizes("user_causes"))
}

func TestHandle_DuplicateRecordsWrittenOnce(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1",
		`{"user_boycotts":[{"company_id":"c1","cause_id":"k1"},{"company_id":"c1","cause_id":"k1"}],"user_causes":[{"cause_id":"k1"},{"cause_id":"k1"}]}`))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []int{1}, api.batchSizes("user_boycotts"))
	assert.Equal(t, []int{1}, api.batchSizes("user_causes"))
}

func TestHandle_KeysInOtherCaseAreRejected(t *testing.T) {
	api := newFakeDynamo()
	h := newTestHandler(api, false)

	resp, err := h.Handle(context.Background(), requestFor("u1", `{"USER_BOYCOTTS":[],"User_Causes":[]}`))
	require.NoError(t, err)

	assert.Equal(t, 400, resp.StatusCode)
	assert.Zero(t, api.calls())
}

type stubUpgrader struct {
	out *services.UpgradeOutcome
}

func (s stubUpgrader) Upgrade(ctx context.Context, userID string, form *models.UpgradeForm) (*services.UpgradeOutcome, error) {
	return s.out, nil
}

func TestHandle_IncompleteOutcomeIs500(t *testing.T) {
	tests := []struct {
		name string
		out  *services.UpgradeOutcome
	}{
		{"nil outcome", nil},
		{"step not run", &services.UpgradeOutcome{Steps: []services.StepResult{
			{Name: services.StepUpgradeUser, Status: services.StepSucceeded},
			{Name: services.StepInsertBoycotts, Status: services.StepNotRun},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(auth.ClaimsResolver{}, stubUpgrader{out: tt.out}, logging.Nop(), false)

			resp, err := h.Handle(context.Background(), requestFor("u1", `{"user_boycotts":[],"user_causes":[]}`))
			require.NoError(t, err)

			assert.Equal(t, 500, resp.StatusCode)
			msg := decode(t, resp)
			assert.True(t, strings.HasPrefix(msg.Message, "Transaction failed:"), msg.Message)
		})
	}
}
