package queuedao

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/rs/zerolog"
	"github.com/savaki/ddb"
)

// DAO provides access to the queues table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new queues DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Queue{}),
		api:       api,
		tableName: tableName,
	}
}

// Save stores a queue record, replacing any previous version.
func (d *DAO) Save(ctx context.Context, queue Queue) error {
	if err := d.table.Put(queue).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to save queue %v: %w", queue.QueueID, err)
	}
	return nil
}

// Get retrieves a queue record by ID. Returns nil without error when the
// queue does not exist.
func (d *DAO) Get(ctx context.Context, queueID string) (*Queue, error) {
	var queue Queue
	if err := d.table.Get(queueID).ScanWithContext(ctx, &queue); err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get queue %v: %w", queueID, err)
	}
	return &queue, nil
}

// IncrementLastGeneratedToken advances the issued-token counter by one as a
// single conditional update; the store rejects the write when the queue is
// at capacity, so concurrent callers can never over-issue. Returns the new
// counter value, which is the caller's token number.
func (d *DAO) IncrementLastGeneratedToken(ctx context.Context, queueID string) (int, error) {
	return d.incrementCounter(ctx, queueID,
		"SET #last_generated_token = #last_generated_token + :one",
		"#last_generated_token < #max_size",
		map[string]*string{
			"#last_generated_token": aws.String("last_generated_token"),
			"#max_size":             aws.String("max_size"),
		},
		"last_generated_token",
	)
}

// IncrementLastProcessedToken advances the processed-token cursor by one,
// conditioned on an unprocessed token remaining.
func (d *DAO) IncrementLastProcessedToken(ctx context.Context, queueID string) (int, error) {
	return d.incrementCounter(ctx, queueID,
		"SET #last_processed_token = #last_processed_token + :one",
		"#last_processed_token < #last_generated_token",
		map[string]*string{
			"#last_processed_token": aws.String("last_processed_token"),
			"#last_generated_token": aws.String("last_generated_token"),
		},
		"last_processed_token",
	)
}

func (d *DAO) incrementCounter(ctx context.Context, queueID, updateExpr, conditionExpr string, names map[string]*string, counterAttr string) (int, error) {
	out, err := d.api.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"queue_id": {S: aws.String(queueID)},
		},
		UpdateExpression:         aws.String(updateExpr),
		ConditionExpression:      aws.String(conditionExpr),
		ExpressionAttributeNames: names,
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":one": {N: aws.String("1")},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %v for queue %v: %w", counterAttr, queueID, err)
	}

	attr, ok := out.Attributes[counterAttr]
	if !ok || attr.N == nil {
		return 0, fmt.Errorf("no %v returned for queue %v", counterAttr, queueID)
	}
	token, err := strconv.Atoi(aws.StringValue(attr.N))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %v for queue %v: %w", counterAttr, queueID, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("queue_id", queueID).
		Int(counterAttr, token).
		Msg("incremented counter")
	return token, nil
}

// Update applies a partial update: only the supplied fields are written,
// everything else is left untouched. Conditioned on the queue row already
// existing.
func (d *DAO) Update(ctx context.Context, queueID string, queueName *string, maxSize *int, disabled *bool) error {
	names := map[string]*string{}
	values := map[string]*dynamodb.AttributeValue{}
	var sets []string

	if queueName != nil {
		names["#queue_name"] = aws.String("queue_name")
		values[":queue_name"] = &dynamodb.AttributeValue{S: queueName}
		sets = append(sets, "#queue_name = :queue_name")
	}
	if maxSize != nil {
		names["#max_size"] = aws.String("max_size")
		values[":max_size"] = &dynamodb.AttributeValue{N: aws.String(strconv.Itoa(*maxSize))}
		sets = append(sets, "#max_size = :max_size")
	}
	if disabled != nil {
		names["#disabled"] = aws.String("disabled")
		values[":disabled"] = &dynamodb.AttributeValue{BOOL: disabled}
		sets = append(sets, "#disabled = :disabled")
	}
	if len(sets) == 0 {
		return nil
	}

	updateExpr := "SET " + sets[0]
	for _, s := range sets[1:] {
		updateExpr += ", " + s
	}

	_, err := d.api.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"queue_id": {S: aws.String(queueID)},
		},
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String("attribute_exists(queue_id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to update queue %v: %w", queueID, err)
	}
	return nil
}

// Delete removes a queue record by ID.
func (d *DAO) Delete(ctx context.Context, queueID string) error {
	if err := d.table.Delete(queueID).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to delete queue %v: %w", queueID, err)
	}
	return nil
}

// Scan returns one page of queue records. The pagination token is the
// queue_id of the last evaluated key; an empty token starts from the top,
// and an empty returned token means the scan is complete.
func (d *DAO) Scan(ctx context.Context, paginationToken string) ([]Queue, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(d.tableName),
	}
	if paginationToken != "" {
		input.ExclusiveStartKey = map[string]*dynamodb.AttributeValue{
			"queue_id": {S: aws.String(paginationToken)},
		}
	}

	out, err := d.api.ScanWithContext(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan queues: %w", err)
	}

	var queues []Queue
	if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &queues); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal queues: %w", err)
	}

	var next string
	if key, ok := out.LastEvaluatedKey["queue_id"]; ok && key.S != nil {
		next = aws.StringValue(key.S)
	}
	return queues, next, nil
}
