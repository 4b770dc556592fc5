package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/course-agent-api/internal/domain"
)

// EnrollmentRepo provides typed DynamoDB operations for the
// course_enrollments table.
type EnrollmentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEnrollmentRepo(client *dynamodb.Client, tableName string) *EnrollmentRepo {
	return &EnrollmentRepo{client: client, tableName: tableName}
}

func (r *EnrollmentRepo) Put(ctx context.Context, e *domain.Enrollment) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal enrollment: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByUser returns every enrollment for an account via the user_id
// GSI. No rows is an empty slice, not an error.
func (r *EnrollmentRepo) ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var enrollments []domain.Enrollment
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// GetByUserCourse returns the first enrollment matching user + course.
func (r *EnrollmentRepo) GetByUserCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("course_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":cid": &types.AttributeValueMemberS{Value: courseID},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("enrollment not found: %w", domain.ErrNotFound)
	}
	var e domain.Enrollment
	if err := attributevalue.UnmarshalMap(out.Items[0], &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateSchedule replaces the schedule document on an enrollment.
func (r *EnrollmentRepo) UpdateSchedule(ctx context.Context, enrollmentID string, sched domain.Schedule) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldSchedule:  sched,
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("enrollment_id", enrollmentID),
		ConditionExpression:       aws.String("attribute_exists(enrollment_id)"),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("enrollment not found: %w", domain.ErrNotFound)
	}
	return err
}
