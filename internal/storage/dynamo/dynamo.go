// Package dynamo provides a DynamoDB-backed implementation of the
// storage.Store interface.
//
// Table layout: partition key "pk" = "<environment>#<date>", sort key
// "sk" = person. One item per selection, so a day is a single Query.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mmynk/dinnerpicker/internal/models"
	"github.com/mmynk/dinnerpicker/internal/storage"
)

const (
	// maxUpsertAttempts bounds retries when newer writes keep landing first.
	maxUpsertAttempts = 5

	backend = "dynamodb"

	// maxBatchWrite is DynamoDB's BatchWriteItem request limit.
	maxBatchWrite = 25
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

var (
	_ API           = (*dynamodb.Client)(nil)
	_ storage.Store = (*DynamoStore)(nil)
)

// DynamoStore implements storage.Store on a DynamoDB table.
type DynamoStore struct {
	client      API
	table       string
	environment string
}

// item is the stored shape of a selection.
type item struct {
	PK          string  `dynamodbav:"pk"`
	SK          string  `dynamodbav:"sk"`
	Environment string  `dynamodbav:"environment"`
	Date        string  `dynamodbav:"date"`
	Starter     *string `dynamodbav:"starter,omitempty"`
	Main        *string `dynamodbav:"main,omitempty"`
	UpdatedAt   int64   `dynamodbav:"updated_at"`
}

// New creates a DynamoStore on an existing client.
func New(client API, table, environment string) *DynamoStore {
	return &DynamoStore{client: client, table: table, environment: environment}
}

// Connect loads the default AWS configuration and builds a client. A non-empty
// endpoint overrides the service URL, e.g. for DynamoDB Local.
func Connect(ctx context.Context, table, endpoint, environment string) (*DynamoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return New(client, table, environment), nil
}

func (s *DynamoStore) partitionKey(date string) string {
	return s.environment + "#" + date
}

// EnsureTable creates the table with on-demand billing if it does not exist.
func (s *DynamoStore) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return storage.Wrap(backend, "describe table", err)
	}

	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(s.table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
	})
	if err != nil {
		return storage.Wrap(backend, "create table", err)
	}
	return nil
}

// UpsertSelection writes the whole item. The write is conditional on the
// stored timestamp not being newer than the one written; when it is, the item
// is retried carrying the stored timestamp, so fields are still replaced and
// updated_at never moves backwards.
func (s *DynamoStore) UpsertSelection(ctx context.Context, sel *models.Selection) error {
	av, err := attributevalue.MarshalMap(item{
		PK:          s.partitionKey(sel.Date),
		SK:          sel.Person,
		Environment: s.environment,
		Date:        sel.Date,
		Starter:     sel.Starter,
		Main:        sel.Main,
		UpdatedAt:   sel.UpdatedAt.UnixNano(),
	})
	if err != nil {
		return storage.Wrap(backend, "marshal selection", err)
	}

	stamp := av["updated_at"]
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		av["updated_at"] = stamp
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(s.table),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(pk) OR updated_at <= :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": stamp,
			},
			ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
		})

		var stale *types.ConditionalCheckFailedException
		if !errors.As(err, &stale) {
			break
		}
		prev, ok := stale.Item["updated_at"]
		if !ok {
			break
		}
		stamp = prev
	}
	if err != nil {
		return storage.Wrap(backend, "upsert selection", err)
	}
	return nil
}

// ListSelections queries the day's partition, following pagination.
func (s *DynamoStore) ListSelections(ctx context.Context, date string) (models.DaySelections, error) {
	items, err := s.queryDay(ctx, date, nil)
	if err != nil {
		return nil, storage.Wrap(backend, "list selections", err)
	}

	day := make(models.DaySelections, len(items))
	for _, raw := range items {
		var it item
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, storage.Wrap(backend, "unmarshal selection", err)
		}
		day[it.SK] = &models.Selection{
			Date:      date,
			Person:    it.SK,
			Starter:   it.Starter,
			Main:      it.Main,
			UpdatedAt: time.Unix(0, it.UpdatedAt),
		}
	}
	return day, nil
}

// DeleteSelections removes every item in the day's partition in batches.
func (s *DynamoStore) DeleteSelections(ctx context.Context, date string) error {
	keys, err := s.queryDay(ctx, date, aws.String("pk, sk"))
	if err != nil {
		return storage.Wrap(backend, "list selection keys", err)
	}

	for start := 0; start < len(keys); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(keys))

		reqs := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
					"pk": key["pk"],
					"sk": key["sk"],
				}},
			})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: reqs},
		})
		if err != nil {
			return storage.Wrap(backend, "delete selections", err)
		}
		if n := len(out.UnprocessedItems[s.table]); n > 0 {
			return storage.Wrap(backend, "delete selections", fmt.Errorf("%d deletes left unprocessed", n))
		}
	}
	return nil
}

// Close is a no-op; the AWS client holds no connections that need releasing.
func (s *DynamoStore) Close() error {
	return nil
}

func (s *DynamoStore) queryDay(ctx context.Context, date string, projection *string) ([]map[string]types.AttributeValue, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk"),
		ProjectionExpression:   projection,
		ConsistentRead:         aws.Bool(true),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: s.partitionKey(date)},
		},
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}
