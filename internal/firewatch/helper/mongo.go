package helper

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Stores struct {
	DB   *mongo.Database
	Runs *mongo.Collection // 固定集合：runs
}

func MustMongo(ctx context.Context, host, dbname, username, password, authSource string) *Stores {
	clientOpts := options.Client().
		ApplyURI("mongodb://" + host).
		SetAuth(options.Credential{
			Username:   username,
			Password:   password,
			AuthSource: authSource,
		})

	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		panic(err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		panic(err)
	}

	db := cli.Database(dbname)
	s := &Stores{
		DB:   db,
		Runs: db.Collection("runs"),
	}
	ensureIndexes(ctx, s)
	return s
}

func ensureIndexes(ctx context.Context, s *Stores) {
	_, _ = s.Runs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "finished_at", Value: -1}}},
	})
}

// -------- 按日期分表（collection）工具 --------

// RecordCollName 按 UTC 日期分表：records_YYYY_MM_DD
func RecordCollName(t time.Time) string {
	return fmt.Sprintf("records_%s", t.UTC().Format("2006_01_02"))
}

// EnsureRecordIndexes 确保当天分表有索引（tweet_id 唯一、source、verified_at）
func EnsureRecordIndexes(ctx context.Context, db *mongo.Database, collName string) {
	c := db.Collection(collName)
	unique := true
	_, _ = c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tweet_id", Value: 1}},
			Options: &options.IndexOptions{Unique: &unique},
		},
		{Keys: bson.D{{Key: "source", Value: 1}}},
		{Keys: bson.D{{Key: "verified_at", Value: 1}}},
	})
}
