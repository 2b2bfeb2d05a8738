package dynamo

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-process stand-in for the subset of DynamoDB the store
// uses. It pages Query results to exercise pagination.
type fakeDynamo struct {
	mu       sync.Mutex
	tables   map[string]bool
	items    map[string]map[string]map[string]types.AttributeValue // pk -> sk -> item
	pageSize int
	failWith error
	// onConflict runs once, after the next failed conditional put, with the
	// lock held. It simulates a writer landing between retries.
	onConflict func(items map[string]map[string]map[string]types.AttributeValue)
}

var _ API = (*fakeDynamo)(nil)

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables:   make(map[string]bool),
		items:    make(map[string]map[string]map[string]types.AttributeValue),
		pageSize: 3,
	}
}

func attrS(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func attrN(av types.AttributeValue) int64 {
	if n, ok := av.(*types.AttributeValueMemberN); ok {
		v, _ := strconv.ParseInt(n.Value, 10, 64)
		return v
	}
	return 0
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	pk, sk := attrS(in.Item["pk"]), attrS(in.Item["sk"])
	if f.items[pk] == nil {
		f.items[pk] = make(map[string]map[string]types.AttributeValue)
	}

	if prev, ok := f.items[pk][sk]; ok && in.ConditionExpression != nil {
		if attrN(prev["updated_at"]) > attrN(in.ExpressionAttributeValues[":t"]) {
			if hook := f.onConflict; hook != nil {
				f.onConflict = nil
				defer hook(f.items)
			}
			return nil, &types.ConditionalCheckFailedException{
				Message: aws.String("The conditional request failed"),
				Item:    prev,
			}
		}
	}

	f.items[pk][sk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	pk := attrS(in.ExpressionAttributeValues[":pk"])
	sks := make([]string, 0, len(f.items[pk]))
	for sk := range f.items[pk] {
		sks = append(sks, sk)
	}
	sort.Strings(sks)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := attrS(in.ExclusiveStartKey["sk"])
		start = sort.SearchStrings(sks, after)
		if start < len(sks) && sks[start] == after {
			start++
		}
	}
	end := min(start+f.pageSize, len(sks))

	out := &dynamodb.QueryOutput{}
	for _, sk := range sks[start:end] {
		out.Items = append(out.Items, f.items[pk][sk])
	}
	if end < len(sks) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
			"sk": &types.AttributeValueMemberS{Value: sks[end-1]},
		}
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	for _, reqs := range in.RequestItems {
		if len(reqs) > maxBatchWrite {
			return nil, errors.New("ValidationException: too many items in batch")
		}
		for _, req := range reqs {
			if req.DeleteRequest == nil {
				continue
			}
			pk, sk := attrS(req.DeleteRequest.Key["pk"]), attrS(req.DeleteRequest.Key["sk"])
			delete(f.items[pk], sk)
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.tables[aws.ToString(in.TableName)] {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func (f *fakeDynamo) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[aws.ToString(in.TableName)] = true
	return &dynamodb.CreateTableOutput{}, nil
}
