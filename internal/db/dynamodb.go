// Package db implements the history store on DynamoDB: one table of
// analysis records and one of their items, plus a user index for listing.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/moodboard/internal/apperrors"
	"github.com/spacesedan/moodboard/internal/history"
	"github.com/spacesedan/moodboard/internal/models"
)

const (
	DefaultAnalysesTable = "Analyses"
	DefaultItemsTable    = "AnalysisItems"

	// userIndex orders analyses per user by creation time for the
	// newest-first listing.
	userIndex = "user_id-created_at-index"

	// DynamoDB caps BatchWriteItem at 25 requests.
	maxBatchSize = 25
)

// dynamoAPI is the subset of the DynamoDB client the store calls.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore satisfies history.Store. Aggregate counts are snapshotted at
// save time; deletes cascade to item rows.
type DynamoStore struct {
	client        dynamoAPI
	analysesTable string
	itemsTable    string
	newID         func() string
	now           func() time.Time
}

func NewDynamoStore(client *dynamodb.Client, analysesTable, itemsTable string, newID func() string) *DynamoStore {
	if analysesTable == "" {
		analysesTable = DefaultAnalysesTable
	}
	if itemsTable == "" {
		itemsTable = DefaultItemsTable
	}
	return &DynamoStore{
		client:        client,
		analysesTable: analysesTable,
		itemsTable:    itemsTable,
		newID:         newID,
		now:           time.Now,
	}
}

func (s *DynamoStore) Save(ctx context.Context, userID, title, sourceType string, results []models.SentimentResult) (*models.Analysis, error) {
	analysis := history.NewAnalysis(s.newID(), userID, title, sourceType, results)
	analysis.CreatedAt = s.now().UTC()

	// One transaction covers the analysis record and every item row, so a
	// failed save leaves no orphaned parent. 1 + 50 puts stays well under
	// the 100-action transaction cap.
	actions := make([]types.TransactWriteItem, 0, len(results)+1)
	actions = append(actions, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(s.analysesTable),
			Item:      analysisToItem(analysis),
		},
	})
	for i, result := range results {
		actions = append(actions, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.itemsTable),
				Item:      resultToItem(analysis, i, result),
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: actions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: saving analysis: %v", apperrors.ErrPersistence, err)
	}

	slog.Info("[DynamoDB] Saved analysis",
		slog.String("analysis_id", analysis.ID),
		slog.Int("items", len(results)))
	return &analysis, nil
}

func (s *DynamoStore) Load(ctx context.Context, analysisID string) (*models.AnalysisWithItems, error) {
	analysis, err := s.getAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.itemsTable),
		KeyConditionExpression: aws.String("analysis_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: analysisID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying analysis items: %v", apperrors.ErrPersistence, err)
	}

	var items []models.AnalysisItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("%w: decoding analysis items: %v", apperrors.ErrPersistence, err)
	}

	return &models.AnalysisWithItems{Analysis: *analysis, Items: items}, nil
}

func (s *DynamoStore) Delete(ctx context.Context, analysisID string) error {
	if _, err := s.getAnalysis(ctx, analysisID); err != nil {
		return err
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.itemsTable),
		KeyConditionExpression: aws.String("analysis_id = :id"),
		ProjectionExpression:   aws.String("analysis_id, #pos"),
		ExpressionAttributeNames: map[string]string{
			"#pos": "position",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: analysisID},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: querying items for delete: %v", apperrors.ErrPersistence, err)
	}

	deleteRequests := make([]types.WriteRequest, 0, len(out.Items))
	for _, item := range out.Items {
		deleteRequests = append(deleteRequests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: item},
		})
	}
	if err := s.batchWrite(ctx, s.itemsTable, deleteRequests); err != nil {
		return fmt.Errorf("%w: deleting analysis items: %v", apperrors.ErrPersistence, err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.analysesTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: analysisID},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: deleting analysis record: %v", apperrors.ErrPersistence, err)
	}

	slog.Info("[DynamoDB] Deleted analysis", slog.String("analysis_id", analysisID))
	return nil
}

func (s *DynamoStore) List(ctx context.Context, userID string) ([]models.Analysis, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.analysesTable),
		IndexName:              aws.String(userIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing analyses: %v", apperrors.ErrPersistence, err)
	}

	var analyses []models.Analysis
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &analyses); err != nil {
		return nil, fmt.Errorf("%w: decoding analyses: %v", apperrors.ErrPersistence, err)
	}
	return analyses, nil
}

func (s *DynamoStore) getAnalysis(ctx context.Context, analysisID string) (*models.Analysis, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.analysesTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: analysisID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching analysis: %v", apperrors.ErrPersistence, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAnalysisNotFound, analysisID)
	}

	var analysis models.Analysis
	if err := attributevalue.UnmarshalMap(out.Item, &analysis); err != nil {
		return nil, fmt.Errorf("%w: decoding analysis: %v", apperrors.ErrPersistence, err)
	}
	return &analysis, nil
}

// batchWrite flushes requests in chunks of 25, retrying unprocessed items
// with exponential backoff.
func (s *DynamoStore) batchWrite(ctx context.Context, table string, requests []types.WriteRequest) error {
	for i := 0; i < len(requests); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(requests) {
			end = len(requests)
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				table: requests[i:end],
			},
		})
		if err != nil {
			return err
		}

		retryCount := 0
		backoff := 500 * time.Millisecond
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoff)
			backoff *= 2
			slog.Warn("[DynamoDB] Retrying unprocessed items...",
				slog.Int("attempt", retryCount+1),
				slog.Int("remaining", len(out.UnprocessedItems[table])))

			out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return err
			}
			retryCount++
		}

		if len(out.UnprocessedItems) > 0 {
			return fmt.Errorf("%d items unwritten after retries", len(out.UnprocessedItems[table]))
		}
	}
	return nil
}

func analysisToItem(a models.Analysis) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":             &types.AttributeValueMemberS{Value: a.ID},
		"user_id":        &types.AttributeValueMemberS{Value: a.UserID},
		"title":          &types.AttributeValueMemberS{Value: a.Title},
		"source_type":    &types.AttributeValueMemberS{Value: a.SourceType},
		"total_texts":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", a.TotalTexts)},
		"positive_count": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", a.PositiveCount)},
		"negative_count": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", a.NegativeCount)},
		"neutral_count":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", a.NeutralCount)},
		"created_at":     &types.AttributeValueMemberS{Value: a.CreatedAt.Format(time.RFC3339)},
	}
}

func resultToItem(a models.Analysis, position int, r models.SentimentResult) map[string]types.AttributeValue {
	keywords := make([]types.AttributeValue, 0, len(r.Keywords))
	for _, k := range r.Keywords {
		keywords = append(keywords, &types.AttributeValueMemberS{Value: k})
	}

	return map[string]types.AttributeValue{
		"id":           &types.AttributeValueMemberS{Value: r.ID},
		"analysis_id":  &types.AttributeValueMemberS{Value: a.ID},
		"position":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", position)},
		"text_content": &types.AttributeValueMemberS{Value: r.Text},
		"sentiment":    &types.AttributeValueMemberS{Value: r.Sentiment},
		"confidence":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%f", r.Confidence)},
		"keywords":     &types.AttributeValueMemberL{Value: keywords},
		"explanation":  &types.AttributeValueMemberS{Value: r.Explanation},
		"created_at":   &types.AttributeValueMemberS{Value: a.CreatedAt.Format(time.RFC3339)},
	}
}
