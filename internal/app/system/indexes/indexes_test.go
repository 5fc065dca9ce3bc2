package indexes_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/stratasched/internal/app/system/indexes"
	"github.com/dalemusser/stratasched/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		keys bson.D
		want string
	}{
		{bson.D{{Key: "created_at", Value: -1}}, "created_at:-1"},
		{bson.D{{Key: "doc_name", Value: 1}, {Key: "created_at", Value: -1}}, "doc_name:1,created_at:-1"},
		// Directions as the server returns them.
		{bson.D{{Key: "doc_name", Value: int32(1)}, {Key: "created_at", Value: float64(-1)}}, "doc_name:1,created_at:-1"},
		{bson.D{{Key: "note", Value: "text"}}, "note:text"},
	}
	for _, tt := range tests {
		if got := indexes.Signature(tt.keys); got != tt.want {
			t.Errorf("Signature(%v) = %q, want %q", tt.keys, got, tt.want)
		}
	}
}

func listNames(t *testing.T, coll *mongo.Collection) []string {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var specs []struct {
		Name string `bson:"name"`
	}
	if err := cur.All(ctx, &specs); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names
}

func TestEnsure_ReusesSameKeys(t *testing.T) {
	db := testutil.SetupTestDB(t)
	coll := db.Collection("boards")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys as the model below, different name.
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: -1}},
		Options: options.Index().SetName("legacy_updated"),
	}); err != nil {
		t.Fatalf("seed index: %v", err)
	}

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}, Options: options.Index().SetName("idx_board_updated")},
		{Keys: bson.D{{Key: "view", Value: 1}, {Key: "updated_at", Value: -1}}, Options: options.Index().SetName("idx_board_view")},
	}
	for i := 0; i < 2; i++ {
		if err := indexes.Ensure(ctx, coll, models); err != nil {
			t.Fatalf("Ensure() run %d error = %v", i+1, err)
		}
	}

	got := map[string]bool{}
	for _, n := range listNames(t, coll) {
		got[n] = true
	}
	if len(got) != 3 {
		t.Errorf("indexes = %v, want _id_, legacy_updated, idx_board_view", got)
	}
	if !got["legacy_updated"] || !got["idx_board_view"] {
		t.Errorf("indexes = %v", got)
	}
	if got["idx_board_updated"] {
		t.Error("index with existing keys was created again")
	}
}

func TestEnsureAll_NamesFailingCollection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bad := indexes.Set{
		Collection: "broken",
		Models:     []mongo.IndexModel{{Keys: bson.M{"a": 1}}},
	}
	good := indexes.Set{
		Collection: "fine",
		Models:     []mongo.IndexModel{{Keys: bson.D{{Key: "a", Value: 1}}}},
	}

	err := indexes.EnsureAll(ctx, db, bad, good)
	if err == nil {
		t.Fatal("EnsureAll() error = nil, want error for bson.M keys")
	}
	if !strings.HasPrefix(err.Error(), "broken: ") {
		t.Errorf("error = %q, want it to name the broken collection", err)
	}
	if names := listNames(t, db.Collection("fine")); len(names) != 2 {
		t.Errorf("fine collection indexes = %v, want _id_ and a_1", names)
	}
}
