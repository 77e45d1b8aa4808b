package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"pill-dispenser/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Client wraps the events table and the user binding table.
// The events table is append-only and keyed by command_id.
type Client struct {
	api         dynamodbAPI
	eventsTable string
	userTable   string
}

// New creates a new repository Client.
func New(api dynamodbAPI, eventsTable, userTable string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(eventsTable) == "" {
		return nil, errors.New("repository: events table name must not be empty")
	}
	if strings.TrimSpace(userTable) == "" {
		return nil, errors.New("repository: user table name must not be empty")
	}
	return &Client{api: api, eventsTable: eventsTable, userTable: userTable}, nil
}

// GetUserDevice returns the dispenser bound to userID.
func (c *Client) GetUserDevice(ctx context.Context, userID string) (domain.UserDevice, bool, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.userTable),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return domain.UserDevice{}, false, fmt.Errorf("repository: GetUserDevice query: %w", err)
	}
	if out == nil || len(out.Items) == 0 {
		return domain.UserDevice{}, false, nil
	}

	item := out.Items[0]
	thing, err := strAttr(item, "thing_name")
	if err != nil {
		return domain.UserDevice{}, false, fmt.Errorf("repository: GetUserDevice decode: %w", err)
	}
	return domain.UserDevice{
		UserID:      userID,
		ThingName:   thing,
		Description: optStr(item, "description", ""),
	}, true, nil
}

// PutScheduleAssignment appends a schedule_update record.
func (c *Client) PutScheduleAssignment(ctx context.Context, a domain.ScheduleAssignment) error {
	if err := c.put(ctx, scheduleItem(a)); err != nil {
		return fmt.Errorf("repository: PutScheduleAssignment: %w", err)
	}
	return nil
}

// PutDispenseEvent appends a dispense_request or dispense_completed record.
func (c *Client) PutDispenseEvent(ctx context.Context, e domain.DispenseEvent) error {
	if e.Type != domain.EventDispenseRequest && e.Type != domain.EventDispenseCompleted {
		return fmt.Errorf("repository: PutDispenseEvent: unexpected event type %q", e.Type)
	}
	if err := c.put(ctx, dispenseItem(e)); err != nil {
		return fmt.Errorf("repository: PutDispenseEvent: %w", err)
	}
	return nil
}

// PutScheduleMonitor appends a device schedule report.
func (c *Client) PutScheduleMonitor(ctx context.Context, m domain.ScheduleMonitor) error {
	if err := c.put(ctx, monitorItem(m)); err != nil {
		return fmt.Errorf("repository: PutScheduleMonitor: %w", err)
	}
	return nil
}

// FindOwnerByCommandID returns the pill and user of the first record stored under commandID.
func (c *Client) FindOwnerByCommandID(ctx context.Context, commandID int64) (domain.EventOwner, bool, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.eventsTable),
		KeyConditionExpression: aws.String("command_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": numberValue(commandID),
		},
	})
	if err != nil {
		return domain.EventOwner{}, false, fmt.Errorf("repository: FindOwnerByCommandID query: %w", err)
	}
	if out == nil || len(out.Items) == 0 {
		return domain.EventOwner{}, false, nil
	}
	item := out.Items[0]
	return domain.EventOwner{
		PillName: optStr(item, "pill_name", domain.UnknownPill),
		UserID:   optStr(item, "user_id", domain.SystemUser),
	}, true, nil
}

// ScheduleAssignments scans every schedule_update record matching f.
// Results are unordered. Items that cannot be decoded are logged and skipped
// so one bad record does not hide every other schedule.
func (c *Client) ScheduleAssignments(ctx context.Context, f domain.ScheduleFilter) ([]domain.ScheduleAssignment, error) {
	cond := newFilter().eq("event_type", string(domain.EventScheduleUpdate))
	cond.eqIfSet("user_id", f.UserID)
	cond.eqIfSet("pill_name", f.PillName)
	cond.eqIfSet("thing_name", f.ThingName)
	cond.eqIfSet("color", string(f.Color))

	items, err := c.scan(ctx, cond)
	if err != nil {
		return nil, fmt.Errorf("repository: ScheduleAssignments: %w", err)
	}
	out := make([]domain.ScheduleAssignment, 0, len(items))
	for _, item := range items {
		a, err := itemToSchedule(item)
		if err != nil {
			slog.Warn("skipping undecodable schedule item", "command_id", rawAttr(item, "command_id"), "err", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// DispenseEvents scans every dispense record of the given type for userID.
// Results are unordered.
func (c *Client) DispenseEvents(ctx context.Context, userID string, eventType domain.EventType) ([]domain.DispenseEvent, error) {
	cond := newFilter().eq("event_type", string(eventType)).eq("user_id", userID)

	items, err := c.scan(ctx, cond)
	if err != nil {
		return nil, fmt.Errorf("repository: DispenseEvents: %w", err)
	}
	out := make([]domain.DispenseEvent, 0, len(items))
	for _, item := range items {
		e, err := itemToDispense(item)
		if err != nil {
			slog.Warn("skipping undecodable dispense item", "command_id", rawAttr(item, "command_id"), "err", err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) put(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.eventsTable),
		Item:      item,
	})
	return err
}

// scan follows LastEvaluatedKey until the table is exhausted.
func (c *Client) scan(ctx context.Context, f *filter) ([]map[string]types.AttributeValue, error) {
	var (
		items []map[string]types.AttributeValue
		start map[string]types.AttributeValue
	)
	for {
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(c.eventsTable),
			FilterExpression:          aws.String(f.expression()),
			ExpressionAttributeNames:  f.names,
			ExpressionAttributeValues: f.values,
			ExclusiveStartKey:         start,
		})
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if out == nil {
			return items, nil
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		start = out.LastEvaluatedKey
	}
}

// filter accumulates an AND of string equality conditions.
type filter struct {
	conds  []string
	names  map[string]string
	values map[string]types.AttributeValue
}

func newFilter() *filter {
	return &filter{names: map[string]string{}, values: map[string]types.AttributeValue{}}
}

func (f *filter) eq(attr, value string) *filter {
	f.names["#"+attr] = attr
	f.values[":"+attr] = &types.AttributeValueMemberS{Value: value}
	f.conds = append(f.conds, fmt.Sprintf("#%s = :%s", attr, attr))
	return f
}

func (f *filter) eqIfSet(attr, value string) {
	if value != "" {
		f.eq(attr, value)
	}
}

func (f *filter) expression() string {
	return strings.Join(f.conds, " AND ")
}
