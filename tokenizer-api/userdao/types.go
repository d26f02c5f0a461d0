package userdao

// QueueIndex is the secondary index keyed by queue, with the assigned token
// number as its range key. It serves subscriber listings and the lookup of
// the subscriber at a given position.
const QueueIndex = "queue_gsi"

// State is the lifecycle of a non-owner subscription.
type State string

const (
	StateWaiting State = "WAITING"
	StateDone    State = "DONE"
)

// Subscription links one user to one queue. The queue creator holds the
// single owner row, stored with token number zero so it still lands in the
// queue index; every other row holds the ticket position assigned at
// subscribe time, which is always one or greater.
type Subscription struct {
	UserID      string `dynamodbav:"user_id" ddb:"hash" json:"user_id"`
	QueueID     string `dynamodbav:"queue_id" ddb:"range" json:"queue_id"`
	UserName    string `dynamodbav:"user_name,omitempty" json:"user_name,omitempty"`
	Owner       bool   `dynamodbav:"owner" json:"owner"`
	TokenNumber int    `dynamodbav:"token_num" json:"token_number,omitempty"`
	State       State  `dynamodbav:"user_state,omitempty" json:"state,omitempty"`
}
