// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Set is the indexes one collection needs. Stores describe their own sets
// so this package never imports them.
type Set struct {
	Collection string
	Models     []mongo.IndexModel
}

// EnsureAll ensures every set at startup. A failing collection does not stop
// the others; the problems are joined into one error.
func EnsureAll(ctx context.Context, db *mongo.Database, sets ...Set) error {
	var errs []error
	for _, s := range sets {
		if err := Ensure(ctx, db.Collection(s.Collection), s.Models); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Collection, err))
		}
	}
	return errors.Join(errs...)
}

// Ensure creates each model whose key pattern is not indexed yet. An index
// with the same keys under another name counts as present.
func Ensure(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	have, err := keyPatterns(ctx, coll)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}

	var errs []error
	for _, m := range models {
		keys, ok := m.Keys.(bson.D)
		if !ok {
			errs = append(errs, fmt.Errorf("index keys must be bson.D, got %T", m.Keys))
			continue
		}
		sig := Signature(keys)
		if name, ok := have[sig]; ok {
			zap.L().Debug("index present",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig))
			continue
		}

		start := time.Now()
		name, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			zap.L().Warn("index create failed",
				zap.String("collection", coll.Name()),
				zap.String("keys", sig),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("create %s: %w", sig, err))
			continue
		}
		have[sig] = name
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}

// keyPatterns maps the key signature of every existing index to its name.
// A collection that does not exist yet has none.
func keyPatterns(ctx context.Context, coll *mongo.Collection) (map[string]string, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	var specs []struct {
		Name string `bson:"name"`
		Key  bson.D `bson:"key"`
	}
	// All closes the cursor.
	if err := cur.All(ctx, &specs); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(specs))
	for _, s := range specs {
		out[Signature(s.Key)] = s.Name
	}
	return out, nil
}

// Signature renders an ordered key pattern as "field:dir,field:dir". Server
// replies decode directions as int32 or float64, so they are normalized to
// whole numbers; text and hashed keys keep their string value.
func Signature(keys bson.D) string {
	var b strings.Builder
	for i, kv := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(kv.Key)
		b.WriteByte(':')
		switch v := kv.Value.(type) {
		case int:
			fmt.Fprint(&b, v)
		case int32:
			fmt.Fprint(&b, v)
		case int64:
			fmt.Fprint(&b, v)
		case float64:
			fmt.Fprint(&b, int64(v))
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}
