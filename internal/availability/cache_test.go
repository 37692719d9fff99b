package availability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

func TestRedisCacheMissThenHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, time.Minute)
	ctx := context.Background()

	mock.ExpectGet("availability:v:court-1").RedisNil()
	mock.ExpectGet("availability:t:court-1:0:2026-03-02:2026-03-02").RedisNil()

	got, version, err := cache.Get(ctx, "court-1", monday, monday)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "0", version)

	tt, err := Calculate(hourly(), []schedule.Schedule{sched("s1", weekdays, "08:00", "10:00", 150, schedule.StatusActive)}, nil, nil, monday, monday)
	require.NoError(t, err)
	raw, err := json.Marshal(tt)
	require.NoError(t, err)

	mock.ExpectSet("availability:t:court-1:0:2026-03-02:2026-03-02", raw, time.Minute).SetVal("OK")
	require.NoError(t, cache.Set(ctx, version, tt, monday, monday))

	mock.ExpectGet("availability:v:court-1").RedisNil()
	mock.ExpectGet("availability:t:court-1:0:2026-03-02:2026-03-02").SetVal(string(raw))

	got, _, err = cache.Get(ctx, "court-1", monday, monday)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Days, 1)
	assert.Equal(t, tt.Days[0].TimeSlots[1].StartTime, got.Days[0].TimeSlots[1].StartTime)
	assert.True(t, tt.Days[0].TimeSlots[0].Price.Equal(got.Days[0].TimeSlots[0].Price))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheInvalidateBumpsVersion(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, time.Minute)
	ctx := context.Background()

	mock.ExpectIncr("availability:v:court-1").SetVal(3)
	require.NoError(t, cache.Invalidate(ctx, "court-1"))

	mock.ExpectGet("availability:v:court-1").SetVal("3")
	mock.ExpectGet("availability:t:court-1:3:2026-03-02:2026-03-08").RedisNil()

	got, version, err := cache.Get(ctx, "court-1", monday, monday.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "3", version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCache(db, time.Minute)
	ctx := context.Background()

	mock.ExpectGet("availability:v:court-1").SetErr(errors.New("dial tcp: refused"))
	_, _, err := cache.Get(ctx, "court-1", monday, monday)
	assert.Error(t, err)

	mock.ExpectIncr("availability:v:court-1").SetErr(errors.New("dial tcp: refused"))
	assert.Error(t, cache.Invalidate(ctx, "court-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
