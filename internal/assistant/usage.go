package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// dayLayout keys counters by UTC calendar day.
const dayLayout = "2006-01-02"

// UsageCounter tracks questions asked per user per day.
type UsageCounter interface {
	Count(ctx context.Context, userID, day string) (int, error)
	Increment(ctx context.Context, userID, day string) (int, error)
	// Prune removes counters for days before the given day.
	Prune(ctx context.Context, before string) (int64, error)
}

// MongoUsageCounter keeps one counter document per user and day:
//
//	{_id: "<user>:<day>", user_id, day, count, updated_at}
type MongoUsageCounter struct {
	coll *mongo.Collection
}

var _ UsageCounter = (*MongoUsageCounter)(nil)

func NewMongoUsageCounter(db *mongo.Database) *MongoUsageCounter {
	return &MongoUsageCounter{coll: db.Collection("assistant_usage")}
}

type usageDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Day       string    `bson:"day"`
	Count     int       `bson:"count"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func usageID(userID, day string) string {
	return userID + ":" + day
}

func (m *MongoUsageCounter) Count(ctx context.Context, userID, day string) (int, error) {
	var doc usageDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": usageID(userID, day)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Count, nil
}

func (m *MongoUsageCounter) Increment(ctx context.Context, userID, day string) (int, error) {
	update := bson.M{
		"$inc":         bson.M{"count": 1},
		"$set":         bson.M{"updated_at": time.Now().UTC()},
		"$setOnInsert": bson.M{"user_id": userID, "day": day},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc usageDoc
	if err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": usageID(userID, day)}, update, opts).Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Count, nil
}

func (m *MongoUsageCounter) Prune(ctx context.Context, before string) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, bson.M{"day": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RedisUsageCounter stores counters as plain keys that expire at the end
// of their day, so Prune has nothing to do.
type RedisUsageCounter struct {
	client *redis.Client
	prefix string
}

var _ UsageCounter = (*RedisUsageCounter)(nil)

// NewRedisUsageCounter creates a counter; prefix defaults to "assistant:usage:".
func NewRedisUsageCounter(client *redis.Client, prefix string) *RedisUsageCounter {
	if prefix == "" {
		prefix = "assistant:usage:"
	}
	return &RedisUsageCounter{client: client, prefix: prefix}
}

func (r *RedisUsageCounter) key(userID, day string) string {
	return r.prefix + userID + ":" + day
}

func (r *RedisUsageCounter) Count(ctx context.Context, userID, day string) (int, error) {
	n, err := r.client.Get(ctx, r.key(userID, day)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r *RedisUsageCounter) Increment(ctx context.Context, userID, day string) (int, error) {
	start, err := time.Parse(dayLayout, day)
	if err != nil {
		return 0, fmt.Errorf("invalid day %q: %w", day, err)
	}
	key := r.key(userID, day)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, start.Add(24*time.Hour))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (r *RedisUsageCounter) Prune(ctx context.Context, before string) (int64, error) {
	return 0, nil
}
