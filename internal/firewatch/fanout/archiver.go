package fanout

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"fire-watch/internal/firewatch/helper"
	"fire-watch/internal/firewatch/model"
)

// Archiver 把验证记录和运行汇总镜像进 Mongo，供查询接口使用。
// 纯 best-effort：归档失败不影响邮件和上传，文件 sink 才是权威数据。
type Archiver struct {
	Log    *zap.Logger
	Stores *helper.Stores
}

// Archive 记录按 tweet_id upsert（重复归档无副作用），汇总进 runs 集合
func (a *Archiver) Archive(ctx context.Context, records []model.VerifiedRecord, report *model.RunReport) error {
	collName := helper.RecordCollName(report.FinishedAt)
	helper.EnsureRecordIndexes(ctx, a.Stores.DB, collName)
	coll := a.Stores.DB.Collection(collName)

	upsert := true
	archived := 0
	for _, rec := range records {
		var score interface{}
		if rec.FireRelatedScore.Valid {
			score = rec.FireRelatedScore.Value
		}
		doc := bson.M{
			"tweet_id":            rec.TweetID,
			"title":               rec.Title,
			"content":             rec.Content,
			"published_date":      rec.PublishedDate,
			"url":                 rec.URL,
			"source":              rec.Source,
			"fire_related_score":  score,
			"verification_result": rec.VerificationResult,
			"verified_at":         rec.VerifiedAt,
			"archived_at":         time.Now().UTC(),
		}
		_, err := coll.UpdateOne(ctx,
			bson.M{"tweet_id": rec.TweetID},
			bson.M{"$set": doc},
			&options.UpdateOptions{Upsert: &upsert},
		)
		if err != nil {
			a.Log.Error("Failed to archive record",
				zap.String("tweetId", rec.TweetID),
				zap.String("collection", collName),
				zap.Error(err),
			)
			continue
		}
		archived++
	}

	if _, err := a.Stores.Runs.InsertOne(ctx, report); err != nil {
		a.Log.Error("Failed to archive run report", zap.Error(err))
		return err
	}

	a.Log.Info("Archived run",
		zap.String("collection", collName),
		zap.Int("records", archived),
	)
	return nil
}
