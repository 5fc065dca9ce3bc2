// internal/app/store/schedulelog/store.go
package schedulelog

import (
	"context"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection schedule changes are written to.
const Collection = "schedule_changes"

// Actions that change a schedule.
const (
	ActionDrag                 = "drag"
	ActionResize               = "resize"
	ActionQuickReschedule      = "quick_reschedule"
	ActionAutoSchedule         = "auto_schedule"
	ActionAutoScheduleJobCards = "auto_schedule_job_cards"
	ActionCreateTestWorkOrders = "create_test_work_orders"
	ActionCreateTestJobCards   = "create_test_job_cards"
)

// Sources of a change.
const (
	SourceCalendar = "calendar"
	SourceForm     = "form"
)

// Change is one attempted schedule mutation and its outcome.
type Change struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	RequestID string             `bson:"request_id"`

	// What
	DocType string `bson:"doc_type,omitempty"`
	DocName string `bson:"doc_name,omitempty"`
	Action  string `bson:"action"`
	Source  string `bson:"source"`
	BoardID string `bson:"board_id,omitempty"`

	// Times before and after
	PrevStart   *time.Time `bson:"prev_start,omitempty"`
	PrevEnd     *time.Time `bson:"prev_end,omitempty"`
	NewStart    *time.Time `bson:"new_start,omitempty"`
	NewEnd      *time.Time `bson:"new_end,omitempty"`
	Workstation string     `bson:"workstation,omitempty"`

	// Context
	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter narrows a history query.
type QueryFilter struct {
	DocName string
	DocType string
	Action  string
	Since   *time.Time
	Limit   int64
	Offset  int64
}

func (f QueryFilter) bson() bson.M {
	query := bson.M{}
	if f.DocName != "" {
		query["doc_name"] = f.DocName
	}
	if f.DocType != "" {
		query["doc_type"] = f.DocType
	}
	if f.Action != "" {
		query["action"] = f.Action
	}
	if f.Since != nil {
		query["created_at"] = bson.M{"$gte": *f.Since}
	}
	return query
}

// Store persists schedule changes.
type Store struct {
	c *mongo.Collection
}

// New creates a Store over db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// EnsureIndexes creates the indexes the history page and retention sweep use.
// Indexes already present are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c, IndexModels())
}

// IndexSet is the collection's index set for indexes.EnsureAll.
func IndexSet() indexes.Set {
	return indexes.Set{Collection: Collection, Models: IndexModels()}
}

// IndexModels lists the collection's indexes.
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "doc_name", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_schedchg_doc"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_schedchg_action"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_schedchg_created"),
		},
	}
}

// Log records a change.
func (s *Store) Log(ctx context.Context, c Change) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, c)
	return err
}

// Query returns matching changes, newest first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Change, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(f.Offset)

	cur, err := s.c.Find(ctx, f.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Change
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of matching changes.
func (s *Store) Count(ctx context.Context, f QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.bson())
}

// DeleteBefore removes changes older than cutoff and returns how many.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
