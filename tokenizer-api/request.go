package tokenizerapi

// Action identifies one operation of the ticketing API. Actions are routed
// through an explicit lookup table built at handler construction; there is
// no reflection-based dispatch.
type Action string

const (
	ActionCreateQueue   Action = "CreateQueue"
	ActionDescribeQueue Action = "DescribeQueue"
	ActionUpdateQueue   Action = "UpdateQueue"
	ActionDeleteQueue   Action = "DeleteQueue"
	ActionListQueues    Action = "ListQueues"
	ActionSubscribe     Action = "Subscribe"
	ActionUnsubscribe   Action = "Unsubscribe"
	ActionProcessNext   Action = "ProcessNext"
	ActionDescribeUser  Action = "DescribeUser"
)

// Parameter names, matching the original query-string contract.
const (
	ParamQueueID         = "queue_id"
	ParamQueueName       = "queue_name"
	ParamQueueMaxSize    = "queue_max_size"
	ParamDisabled        = "disabled"
	ParamOwner           = "owner"
	ParamPaginationToken = "pagination_token"
)

// Request is one authenticated intent against the ticketing API, as handed
// over by the external dispatcher (API Gateway in lambda mode, the chi
// router in console mode).
type Request struct {
	RequesterID   string
	Action        Action
	Params        map[string]string
	CorrelationID string
}

// Param returns the named parameter, empty when absent.
func (r Request) Param(name string) string {
	return r.Params[name]
}

// SuccessMessage is the envelope message for successful operations; failures
// carry the error detail instead.
const SuccessMessage = "SUCCESS"

// Response is the envelope returned for every action.
type Response struct {
	StatusCode      int         `json:"status_code"`
	Message         string      `json:"message"`
	Values          interface{} `json:"values"`
	PaginationToken string      `json:"pagination_token,omitempty"`
}

// SubscribeResult carries the token number assigned by Subscribe.
type SubscribeResult struct {
	TokenNumber int `json:"token_number"`
}

// ProcessResult carries the cursor position consumed by ProcessNext.
type ProcessResult struct {
	LastProcessedToken int `json:"last_processed_token"`
}

// CreateQueueResult carries the ID of a freshly created queue.
type CreateQueueResult struct {
	QueueID string `json:"queue_id"`
}
