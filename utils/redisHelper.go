package utils

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"github.com/bsm/redislock"
)

var mutex sync.Mutex

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

func UniqueSlice[T comparable](in []T) []T {
	seen := make(map[T]bool, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

/* Redis */

// store instance, obj should be a pointer
func StoreRedis[T any](obj any, id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, obj, GetCacheLifespan())
}

// retrieve instance, nil when not cached
func RetrieveRedis[T any](id int) (*T, error) {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	var obj T
	exists, err := config.GetRedisObject(key, &obj)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &obj, nil
}

func RemoveRedis[T any](id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}

// GetSequence hands out the next sequence_no for T within an entity. The
// optional scope column narrows the series further, e.g. one number series
// per transaction type. Redis keeps the hot counter; the DB max is the source
// of truth when the counter is cold or Redis is down. The uniqueness re-check
// closes the gap where another instance took the same number.
func GetSequence[T any](ctx context.Context, entityId string, scopeColumn string, scopeValue string) (int64, error) {
	var model T
	mutex.Lock()
	defer mutex.Unlock()
	cacheKey := entityId + "-" + strings.ToLower(GetTypeName[T]()) + "_seq"
	if scopeColumn != "" {
		cacheKey = entityId + "-" + strings.ToLower(scopeValue) + "-" + strings.ToLower(GetTypeName[T]()) + "_seq"
	}
	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// if not found in redis, get from db
		if seqNo <= 1 {
			var dbSeq *int64
			dbCtx := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Where("entity_id = ?", entityId)
			if scopeColumn != "" {
				dbCtx = dbCtx.Where(scopeColumn+" = ?", scopeValue)
			}
			if err := dbCtx.Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			// in case db has no records yet
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// check if sequence number exists in db
		condition := "sequence_no = ?"
		args := []interface{}{seqNo}
		if scopeColumn != "" {
			condition = scopeColumn + " = ? AND sequence_no = ?"
			args = []interface{}{scopeValue, seqNo}
		}
		count, err := ResourceCountWhere[T](ctx, entityId, condition, args...)
		if err != nil {
			return 0, err
		}
		if count == 0 {
			break
		}
	}
	return seqNo, nil
}

// EntityLock obtains a cross-instance lock for the entity. Returns a release
// func; callers that get an error must not proceed with the guarded write.
func EntityLock(ctx context.Context, entityId string, lockType string) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		// Redis lock not configured; the DB advisory lock still serializes postings.
		return func() {}, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, entityId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		return nil, fmt.Errorf("could not obtain %s lock for entity %s", lockType, entityId)
	} else if err != nil {
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}
