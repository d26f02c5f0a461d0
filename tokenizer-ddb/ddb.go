// Package tokenizerddb provides DynamoDB and DAX client utilities shared by
// the tokenizer data access layers.
package tokenizerddb

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// IsConditionalCheckFailed reports whether err is a DynamoDB conditional
// write rejection. Conditional rejections are expected control flow; each
// caller translates them into its own error kind.
func IsConditionalCheckFailed(err error) bool {
	var ae awserr.Error
	if errors.As(err, &ae) {
		return ae.Code() == dynamodb.ErrCodeConditionalCheckFailedException
	}
	return false
}
