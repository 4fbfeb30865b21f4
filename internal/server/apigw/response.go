package apigw

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/boycottpro/users/internal/common"
)

var marshal = json.Marshal

func respond(status int, body any) (events.APIGatewayProxyResponse, error) {
	b, err := marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("%w: %w", common.ErrSerialization, err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": common.ContentTypeJSON},
		Body:       string(b),
	}, nil
}
