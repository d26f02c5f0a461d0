package queuedao

// DefaultMaxSize caps queues created without an explicit capacity.
const DefaultMaxSize = 99

// Queue represents a capacity-bounded ticket sequence stored in DynamoDB.
// LastGeneratedToken counts tickets ever issued, LastProcessedToken counts
// tickets ever consumed; both only ever move forward via conditional
// increments so that 0 <= processed <= generated <= max_size.
type Queue struct {
	QueueID            string `dynamodbav:"queue_id" ddb:"hash" json:"queue_id"`
	QueueName          string `dynamodbav:"queue_name,omitempty" json:"queue_name,omitempty"`
	LastGeneratedToken int    `dynamodbav:"last_generated_token" json:"last_generated_token"`
	LastProcessedToken int    `dynamodbav:"last_processed_token" json:"last_processed_token"`
	MaxSize            int    `dynamodbav:"max_size" json:"max_size"`
	Disabled           bool   `dynamodbav:"disabled" json:"disabled"`
}
