package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore implements RecordStore on DynamoDB. The images table maps its
// composite key onto the table's partition and sort key attributes; devices
// use the partition key alone.
type DynamoStore struct {
	client *dynamodb.Client
}

func NewDynamoStore(client *dynamodb.Client) *DynamoStore {
	return &DynamoStore{client: client}
}

func (s *DynamoStore) GetRow(ctx context.Context, table TableSpec, key Key) (Row, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table.Name),
		Key:            keyAttrs(table, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, table.Name, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrRowNotFound
	}
	var row Row
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return nil, fmt.Errorf("unmarshal row from %s: %w", table.Name, err)
	}
	return row, nil
}

// PutRow writes the full item unconditionally. A put replaces any existing
// row, which is exactly the upsert-with-ignore semantics the repositories
// rely on; there is no conditional write and no read-back.
func (s *DynamoStore) PutRow(ctx context.Context, table TableSpec, key Key, attrs map[string]any) error {
	item, err := attributevalue.MarshalMap(attrs)
	if err != nil {
		return fmt.Errorf("marshal row for %s: %w", table.Name, err)
	}
	for name, av := range keyAttrs(table, key) {
		item[name] = av
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table.Name),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrUnavailable, table.Name, err)
	}
	return nil
}

func (s *DynamoStore) GetRange(ctx context.Context, q RangeQuery) ([]Row, string, error) {
	// BETWEEN is inclusive at both ends. Callers only ever pass bare
	// millisecond bounds, which can never equal a stored "<ms>-<suffix>"
	// row key, so this is observably the (start, end] scan the contract asks
	// for.
	names := map[string]string{
		"#pk": q.Table.PartitionAttr,
		"#sk": q.Table.SortAttr,
	}
	in := &dynamodb.QueryInput{
		TableName:              aws.String(q.Table.Name),
		KeyConditionExpression: aws.String("#pk = :pk AND #sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: q.PartitionKey},
			":lo": &types.AttributeValueMemberS{Value: q.StartRowKey},
			":hi": &types.AttributeValueMemberS{Value: q.EndRowKey},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if q.Limit > 0 {
		in.Limit = aws.Int32(q.Limit)
	}
	if len(q.Columns) > 0 {
		// Key attributes are always projected so rows stay self-describing.
		parts := []string{"#pk", "#sk"}
		for i, col := range q.Columns {
			alias := fmt.Sprintf("#c%d", i)
			names[alias] = col
			parts = append(parts, alias)
		}
		in.ProjectionExpression = aws.String(strings.Join(parts, ", "))
	}
	in.ExpressionAttributeNames = names
	if q.StartToken != "" {
		tok, err := decodePageToken(q.StartToken)
		if err != nil {
			return nil, "", err
		}
		in.ExclusiveStartKey = map[string]types.AttributeValue{
			q.Table.PartitionAttr: &types.AttributeValueMemberS{Value: tok.PartitionKey},
			q.Table.SortAttr:      &types.AttributeValueMemberS{Value: tok.RowKey},
		}
	}

	out, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, "", fmt.Errorf("%w: query %s: %v", ErrUnavailable, q.Table.Name, err)
	}

	rows := make([]Row, 0, len(out.Items))
	for _, item := range out.Items {
		var row Row
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			return nil, "", fmt.Errorf("unmarshal row from %s: %w", q.Table.Name, err)
		}
		rows = append(rows, row)
	}

	next := ""
	if len(out.LastEvaluatedKey) > 0 {
		var tok pageToken
		if v, ok := out.LastEvaluatedKey[q.Table.PartitionAttr].(*types.AttributeValueMemberS); ok {
			tok.PartitionKey = v.Value
		}
		if v, ok := out.LastEvaluatedKey[q.Table.SortAttr].(*types.AttributeValueMemberS); ok {
			tok.RowKey = v.Value
		}
		next = encodePageToken(tok)
	}
	return rows, next, nil
}

func keyAttrs(table TableSpec, key Key) map[string]types.AttributeValue {
	attrs := map[string]types.AttributeValue{
		table.PartitionAttr: &types.AttributeValueMemberS{Value: key.Partition},
	}
	if table.SortAttr != "" {
		attrs[table.SortAttr] = &types.AttributeValueMemberS{Value: key.Sort}
	}
	return attrs
}
