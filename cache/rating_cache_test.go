package cache

import (
	"context"
	"testing"

	"CalicoFM/model"
)

func TestCountsKeyIsDeterministic(t *testing.T) {
	a := GetCountsKey("Artist", "Song")
	b := GetCountsKey("Artist", "Song")
	if a != b {
		t.Errorf("same track produced different keys: %q vs %q", a, b)
	}
	if a == GetCountsKey("Artist", "Other Song") {
		t.Error("different tracks produced the same key")
	}
}

func TestCountsKeyDelimiterCollision(t *testing.T) {
	// ("a|b", "c") and ("a", "b|c") would both join to a|b|c unescaped.
	if GetCountsKey("a|b", "c") == GetCountsKey("a", "b|c") {
		t.Error("tracks containing the delimiter collide on the same key")
	}
}

func TestCountsCachePassThroughWithoutRedis(t *testing.T) {
	if RedisClient != nil {
		t.Skip("Redis client unexpectedly connected")
	}

	ctx := context.Background()
	if _, ok := GetCounts(ctx, "Artist", "Song"); ok {
		t.Error("expected cache miss with no Redis client")
	}

	// Writes and invalidations are silent no-ops.
	SetCounts(ctx, &model.RatingCounts{Artist: "Artist", Title: "Song", ThumbsUp: 1})
	InvalidateCounts(ctx, "Artist", "Song")

	if _, ok := GetCounts(ctx, "Artist", "Song"); ok {
		t.Error("expected cache miss after no-op write")
	}
}
