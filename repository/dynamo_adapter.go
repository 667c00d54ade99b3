package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	batchWriteLimit   = 25
	batchWriteRetries = 3
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoAdapter.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoAdapter is a DynamoDB-backed ProductRepo.
// It stores products in a table with primary key `product_id` (string).
type DynamoAdapter struct {
	client     DynamoAPI
	table      string
	retryDelay time.Duration
}

func NewDynamoAdapter(client DynamoAPI, table string) *DynamoAdapter {
	return &DynamoAdapter{client: client, table: table, retryDelay: 300 * time.Millisecond}
}

type ddbProduct struct {
	ProductID   string  `dynamodbav:"product_id"`
	Name        string  `dynamodbav:"name"`
	Description *string `dynamodbav:"description,omitempty"`
	Price       float64 `dynamodbav:"price"`
	Stock       int     `dynamodbav:"stock"`
	Category    string  `dynamodbav:"category"`
	CreatedAt   string  `dynamodbav:"created_at"`
	UpdatedAt   string  `dynamodbav:"updated_at"`
}

func toDDB(p models.Product) ddbProduct {
	dp := ddbProduct{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Category:  p.Category,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Description != "" {
		dp.Description = &p.Description
	}
	return dp
}

func fromDDB(dp ddbProduct) *models.Product {
	p := &models.Product{
		ID:       dp.ProductID,
		Name:     dp.Name,
		Price:    dp.Price,
		Stock:    dp.Stock,
		Category: dp.Category,
	}
	if dp.Description != nil {
		p.Description = *dp.Description
	}
	if t, err := time.Parse(time.RFC3339, dp.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, dp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return p
}

func (d *DynamoAdapter) key(id string) (map[string]types.AttributeValue, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"product_id": id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return key, nil
}

func (d *DynamoAdapter) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key, err := d.key(id)
	if err != nil {
		return nil, err
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(out.Item, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return fromDDB(dp), nil
}

// Find performs a Scan and applies skip/limit client side.
func (d *DynamoAdapter) Find(ctx context.Context, limit, skip int) ([]*models.Product, error) {
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{TableName: &d.table})
	results := []*models.Product{}
	seen := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, it := range page.Items {
			if seen < skip {
				seen++
				continue
			}
			var dp ddbProduct
			if err := attributevalue.UnmarshalMap(it, &dp); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			results = append(results, fromDDB(dp))
			if limit > 0 && len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

func (d *DynamoAdapter) Count(ctx context.Context) (int64, error) {
	input := &dynamodb.ScanInput{TableName: &d.table, Select: types.SelectCount}
	paginator := dynamodb.NewScanPaginator(d.client, input)
	var total int64
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("scan count failed: %w", err)
		}
		total += int64(page.Count)
	}
	return total, nil
}

func (d *DynamoAdapter) Create(ctx context.Context, product *models.Product) error {
	item, err := attributevalue.MarshalMap(toDDB(*product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &d.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

// InsertMany uses BatchWriteItem in chunks of 25, retrying unprocessed items.
// The count covers the chunks fully written before a failure.
func (d *DynamoAdapter) InsertMany(ctx context.Context, products []models.Product) (int, error) {
	inserted := 0
	for i := 0; i < len(products); i += batchWriteLimit {
		end := min(i+batchWriteLimit, len(products))
		writeReqs := make([]types.WriteRequest, 0, end-i)
		for _, p := range products[i:end] {
			item, err := attributevalue.MarshalMap(toDDB(p))
			if err != nil {
				return inserted, fmt.Errorf("marshal batch item: %w", err)
			}
			writeReqs = append(writeReqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}
		if err := d.writeChunk(ctx, writeReqs); err != nil {
			return inserted, err
		}
		inserted += len(writeReqs)
	}
	return inserted, nil
}

func (d *DynamoAdapter) writeChunk(ctx context.Context, writeReqs []types.WriteRequest) error {
	req := &dynamodb.BatchWriteItemInput{RequestItems: map[string][]types.WriteRequest{d.table: writeReqs}}
	for attempt := 0; ; attempt++ {
		out, err := d.client.BatchWriteItem(ctx, req)
		if err != nil {
			return fmt.Errorf("batch write failed: %w", err)
		}
		unp := out.UnprocessedItems[d.table]
		if len(unp) == 0 {
			return nil
		}
		if attempt+1 >= batchWriteRetries {
			return fmt.Errorf("batch write had %d unprocessed items after retries", len(unp))
		}
		req.RequestItems[d.table] = unp
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * d.retryDelay):
		}
	}
}

// Update sets the given attributes on an existing product and returns the new item.
func (d *DynamoAdapter) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Product, error) {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]string, len(keys))
	values := make(map[string]types.AttributeValue, len(keys))
	sets := make([]string, 0, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(fields[k])
		if err != nil {
			return nil, fmt.Errorf("marshal update value: %w", err)
		}
		names[nameKey] = k
		values[valueKey] = av
		sets = append(sets, nameKey+" = "+valueKey)
	}

	key, err := d.key(id)
	if err != nil {
		return nil, err
	}
	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &d.table,
		Key:                       key,
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(product_id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update item failed: %w", err)
	}
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(out.Attributes, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return fromDDB(dp), nil
}

func (d *DynamoAdapter) Delete(ctx context.Context, id string) error {
	key, err := d.key(id)
	if err != nil {
		return err
	}
	_, err = d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &d.table,
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(product_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item failed: %w", err)
	}
	return nil
}
