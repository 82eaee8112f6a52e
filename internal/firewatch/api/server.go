package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fire-watch/internal/firewatch/helper"
)

// Server 只读 JSON feed：对外暴露归档库里的验证记录和运行汇总
type Server struct {
	Stores *helper.Stores
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/healthz", s.health)
	r.GET("/records", s.listRecords) // ?date=YYYY-MM-DD&source=&page=1&limit=20
	r.GET("/runs", s.listRuns)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRecords(c *gin.Context) {
	date := c.Query("date")
	var day time.Time
	if date == "" {
		day = time.Now().UTC()
	} else {
		var err error
		day, err = time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}
	coll := s.Stores.DB.Collection(helper.RecordCollName(day))

	filter := bson.M{}
	if v := c.Query("source"); v != "" {
		filter["source"] = v
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	skip := int64((page - 1) * limit)
	limit64 := int64(limit)

	total, err := coll.CountDocuments(c, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	opts := &options.FindOptions{
		Skip:  &skip,
		Limit: &limit64,
		Sort:  bson.D{{Key: "verified_at", Value: -1}},
	}
	cur, err := coll.Find(c, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func(cur *mongo.Cursor, ctx context.Context) {
		if err := cur.Close(ctx); err != nil {
		}
	}(cur, c)

	out := make([]bson.M, 0, limit)
	for cur.Next(c) {
		var m bson.M
		_ = cur.Decode(&m)
		delete(m, "_id")
		out = append(out, m)
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  day.Format("2006-01-02"),
		"total": total,
		"data":  out,
		"page":  page,
		"limit": limit,
	})
}

func (s *Server) listRuns(c *gin.Context) {
	limit := int64(20)
	opts := &options.FindOptions{
		Limit: &limit,
		Sort:  bson.D{{Key: "finished_at", Value: -1}},
	}
	cur, err := s.Stores.Runs.Find(c, bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func(cur *mongo.Cursor, ctx context.Context) {
		if err := cur.Close(ctx); err != nil {
		}
	}(cur, c)

	out := make([]bson.M, 0, limit)
	for cur.Next(c) {
		var m bson.M
		_ = cur.Decode(&m)
		delete(m, "_id")
		out = append(out, m)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
