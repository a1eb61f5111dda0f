package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rendsocial/internal/pkg/cache"
	"rendsocial/internal/pkg/database"
)

const postViewsKey = "post:counters:views"

// AddPostView increments the pending view counter for a post in Redis
func AddPostView(postID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(postID), 10)
	return cache.GetClient().HIncrBy(ctx, postViewsKey, field, 1).Err()
}

// GetPendingPostViews returns the not-yet-flushed view count for a post
func GetPendingPostViews(postID uint) (int64, error) {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(postID), 10)
	val, err := cache.GetClient().HGet(ctx, postViewsKey, field).Int64()
	if err != nil {
		return 0, err
	}
	return val, nil
}

// FlushAll flushes pending view counters to the database
func FlushAll() error {
	return flushHashToTable(postViewsKey, "posts", "view_count")
}

// flushHashToTable drains a Redis hash of id->delta counters into the given
// table column with a single batched UPDATE per flush.
func flushHashToTable(hashKey, table, column string) error {
	ctx := context.Background()
	client := cache.GetClient()

	entries, err := client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read counters from %s: %w", hashKey, err)
	}
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database unavailable, keeping counters in %s", hashKey)
	}

	var cases strings.Builder
	args := make([]interface{}, 0, len(ids)*2+len(ids))
	inArgs := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		delta, convErr := strconv.ParseInt(entries[id], 10, 64)
		if convErr != nil || delta == 0 {
			continue
		}
		cases.WriteString(" WHEN ? THEN ? ")
		args = append(args, id, delta)
		inArgs = append(inArgs, id)
	}
	if len(inArgs) == 0 {
		return client.Del(ctx, hashKey).Err()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(inArgs)), ",")
	query := fmt.Sprintf(
		"UPDATE %s SET %s = %s + CASE id %s ELSE 0 END WHERE id IN (%s)",
		table, column, column, cases.String(), placeholders,
	)
	args = append(args, inArgs...)

	if err := db.Exec(query, args...).Error; err != nil {
		return fmt.Errorf("failed to flush counters to %s.%s: %w", table, column, err)
	}

	return client.Del(ctx, hashKey).Err()
}
