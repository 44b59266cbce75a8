package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"CalicoFM/logger"
	"CalicoFM/model"
)

// countsTTL 聚合计数缓存的过期时间
// 短TTL：投票之外计数也可能被其他实例改写
const countsTTL = 10 * time.Second

// GetCountsKey 根据曲目生成聚合计数的Redis键
// 两段分别转义后再拼接，含分隔符的曲目不会互相串键
func GetCountsKey(artist, title string) string {
	return fmt.Sprintf("ratings:counts:%s|%s", url.QueryEscape(artist), url.QueryEscape(title))
}

// GetCounts 读取缓存的聚合计数，未命中或Redis不可用时返回 false
func GetCounts(ctx context.Context, artist, title string) (*model.RatingCounts, bool) {
	if RedisClient == nil {
		return nil, false
	}

	raw, err := RedisClient.Get(ctx, GetCountsKey(artist, title)).Result()
	if err != nil {
		return nil, false
	}

	counts := &model.RatingCounts{}
	if err := json.Unmarshal([]byte(raw), counts); err != nil {
		logger.Warn("failed to decode cached rating counts",
			logger.String("artist", artist),
			logger.String("title", title),
			logger.ErrorField(err))
		return nil, false
	}
	return counts, true
}

// SetCounts 写入聚合计数缓存，失败只记录日志
func SetCounts(ctx context.Context, counts *model.RatingCounts) {
	if RedisClient == nil {
		return
	}

	raw, err := json.Marshal(counts)
	if err != nil {
		logger.Warn("failed to encode rating counts", logger.ErrorField(err))
		return
	}

	if err := RedisClient.Set(ctx, GetCountsKey(counts.Artist, counts.Title), raw, countsTTL).Err(); err != nil {
		logger.Warn("failed to cache rating counts", logger.ErrorField(err))
	}
}

// InvalidateCounts 投票写入后删除对应曲目的计数缓存
func InvalidateCounts(ctx context.Context, artist, title string) {
	if RedisClient == nil {
		return
	}

	if err := RedisClient.Del(ctx, GetCountsKey(artist, title)).Err(); err != nil {
		logger.Warn("failed to invalidate rating counts cache", logger.ErrorField(err))
	}
}
