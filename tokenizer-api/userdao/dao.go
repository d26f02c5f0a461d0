package userdao

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// DAO provides access to the user subscriptions table.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new subscriptions DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Subscription{}),
		api:       api,
		tableName: tableName,
	}
}

// Save stores a subscription record, replacing any previous version.
func (d *DAO) Save(ctx context.Context, sub Subscription) error {
	if err := d.table.Put(sub).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to save subscription %v/%v: %w", sub.UserID, sub.QueueID, err)
	}
	return nil
}

// Create stores a subscription record conditioned on no row existing yet for
// the (user, queue) pair: a user holds at most one active ticket per queue.
func (d *DAO) Create(ctx context.Context, sub Subscription) error {
	item, err := dynamodbattribute.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription %v/%v: %w", sub.UserID, sub.QueueID, err)
	}

	_, err = d.api.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription %v/%v: %w", sub.UserID, sub.QueueID, err)
	}
	return nil
}

// Get retrieves the subscription linking a user to a queue. Returns nil
// without error when no link exists.
func (d *DAO) Get(ctx context.Context, userID, queueID string) (*Subscription, error) {
	var sub Subscription
	if err := d.table.Get(userID).Range(queueID).ScanWithContext(ctx, &sub); err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription %v/%v: %w", userID, queueID, err)
	}
	return &sub, nil
}

// Delete removes the subscription linking a user to a queue, conditioned on
// the row's owner attribute matching the owner argument. The normal
// un-subscribe path passes owner=false so the delete can never remove an
// ownership row; queue deletion passes owner=true to remove the owner's
// link specifically.
func (d *DAO) Delete(ctx context.Context, userID, queueID string, owner bool) error {
	_, err := d.api.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"user_id":  {S: aws.String(userID)},
			"queue_id": {S: aws.String(queueID)},
		},
		ConditionExpression: aws.String("#owner = :owner"),
		ExpressionAttributeNames: map[string]*string{
			"#owner": aws.String("owner"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":owner": {BOOL: aws.Bool(owner)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete subscription %v/%v: %w", userID, queueID, err)
	}
	return nil
}

// QueryByQueue returns every subscription for a queue, owner row included.
// The secondary index is eventually consistent, which is acceptable for
// subscriber listings.
func (d *DAO) QueryByQueue(ctx context.Context, queueID string) ([]Subscription, error) {
	out, err := d.api.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		IndexName:              aws.String(QueueIndex),
		KeyConditionExpression: aws.String("#queue_id = :queue_id"),
		ExpressionAttributeNames: map[string]*string{
			"#queue_id": aws.String("queue_id"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":queue_id": {S: aws.String(queueID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers of queue %v: %w", queueID, err)
	}

	var subs []Subscription
	if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &subs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscribers of queue %v: %w", queueID, err)
	}
	return subs, nil
}

// FindByPosition looks up the subscriber holding the given token number in a
// queue. Returns nil without error when no subscriber holds that position,
// e.g. after a separate unsubscribe.
func (d *DAO) FindByPosition(ctx context.Context, queueID string, tokenNumber int) (*Subscription, error) {
	out, err := d.api.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		IndexName:              aws.String(QueueIndex),
		KeyConditionExpression: aws.String("#queue_id = :queue_id AND #token_num = :token_num"),
		ExpressionAttributeNames: map[string]*string{
			"#queue_id":  aws.String("queue_id"),
			"#token_num": aws.String("token_num"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":queue_id":  {S: aws.String(queueID)},
			":token_num": {N: aws.String(strconv.Itoa(tokenNumber))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query position %v of queue %v: %w", tokenNumber, queueID, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var sub Subscription
	if err := dynamodbattribute.UnmarshalMap(out.Items[0], &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscriber at position %v of queue %v: %w", tokenNumber, queueID, err)
	}
	return &sub, nil
}

// QueryByUser returns every subscription held by a user, optionally filtered
// server-side to rows whose owner attribute matches.
func (d *DAO) QueryByUser(ctx context.Context, userID string, owner *bool) ([]Subscription, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("#user_id = :user_id"),
		ExpressionAttributeNames: map[string]*string{
			"#user_id": aws.String("user_id"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":user_id": {S: aws.String(userID)},
		},
	}
	if owner != nil {
		input.FilterExpression = aws.String("#owner = :owner")
		input.ExpressionAttributeNames["#owner"] = aws.String("owner")
		input.ExpressionAttributeValues[":owner"] = &dynamodb.AttributeValue{BOOL: owner}
	}

	out, err := d.api.QueryWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions of user %v: %w", userID, err)
	}

	var subs []Subscription
	if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &subs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscriptions of user %v: %w", userID, err)
	}
	return subs, nil
}
