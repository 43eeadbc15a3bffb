package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

type Resource interface {
	GetEntityId() string
}

// GetResource first checks redis, then the db, using ctx's entity_id in the
// WHERE, and caches the result.
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {

	entityId, ok := utils.GetEntityIdFromContext(ctx)
	if !ok || entityId == "" {
		return nil, ErrEntityRequired
	}
	// find in redis
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		return nil, err
	}
	// if not found in redis
	if result == nil {
		// fetch from db
		result, err = utils.FetchModel[T](ctx, entityId, id, associations...)
		if err != nil {
			return nil, err
		}

		// store in redis
		if err := utils.StoreRedis[T](result, id); err != nil {
			return nil, err
		}
	} else {
		// if found in redis
		// check if entity ids match
		if (*result).GetEntityId() != entityId {
			return nil, errors.New("cannot access resource owned by other entity")
		}
	}

	return result, nil
}
