package tokenizerapi

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

type routeKey struct {
	Resource string
	Method   string
}

// resourceRoutes maps the API Gateway resource paths and methods of the
// original HTTP contract onto actions.
var resourceRoutes = map[routeKey]Action{
	{Resource: "/queues/queue", Method: "POST"}:   ActionCreateQueue,
	{Resource: "/queues/queue", Method: "GET"}:    ActionDescribeQueue,
	{Resource: "/queues/queue", Method: "PUT"}:    ActionUpdateQueue,
	{Resource: "/queues/queue", Method: "DELETE"}: ActionDeleteQueue,
	{Resource: "/queues", Method: "GET"}:          ActionListQueues,
	{Resource: "/user", Method: "GET"}:            ActionDescribeUser,
	{Resource: "/user", Method: "POST"}:           ActionSubscribe,
	{Resource: "/user", Method: "PUT"}:            ActionProcessNext,
	{Resource: "/user", Method: "DELETE"}:         ActionUnsubscribe,
}

// HandleAPIGatewayEvent adapts an API Gateway proxy event into a Request and
// serializes the envelope back. The envelope status doubles as the HTTP
// status.
func (h *Handler) HandleAPIGatewayEvent(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req := Request{
		RequesterID:   ParseUsername(event),
		Params:        event.QueryStringParameters,
		CorrelationID: event.RequestContext.RequestID,
	}
	if req.Params == nil {
		req.Params = map[string]string{}
	}

	action, ok := resourceRoutes[routeKey{Resource: event.Resource, Method: event.HTTPMethod}]
	if !ok {
		h.Logger.Warn().
			Str("resource", event.Resource).
			Str("method", event.HTTPMethod).
			Msg("unmapped route")
		return marshalResponse(Response{StatusCode: 400, Message: "Invalid method requested."})
	}
	req.Action = action

	return marshalResponse(h.Dispatch(ctx, req))
}

func marshalResponse(resp Response) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: 502}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}
