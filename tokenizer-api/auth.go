package tokenizerapi

import "github.com/aws/aws-lambda-go/events"

// ParseUsername extracts the authenticated username from the API Gateway
// authorizer claims. Returns empty when the event carries no verified
// identity; the dispatcher short-circuits such requests before any core
// operation runs.
func ParseUsername(event events.APIGatewayProxyRequest) string {
	claims, ok := event.RequestContext.Authorizer["claims"].(map[string]interface{})
	if !ok {
		return ""
	}
	username, _ := claims["username"].(string)
	return username
}
