package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"channelos/internal/domain"
)

// maxRedisEvents caps the journal list length.
const maxRedisEvents = 500

// RedisJournal keeps the journal as a capped list, newest first.
type RedisJournal struct {
	RDB       *redis.Client
	Namespace string
	Now       func() time.Time
}

func (w RedisJournal) listKey() string {
	return fmt.Sprintf("channelos:%s:events", w.Namespace)
}

func (w RedisJournal) seqKey() string {
	return fmt.Sprintf("channelos:%s:events:seq", w.Namespace)
}

func (w RedisJournal) Append(ctx context.Context, evtType, entityID string, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	data, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	id, err := w.RDB.Incr(ctx, w.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("next event id: %w", err)
	}
	evt := domain.Event{
		ID:       id,
		TS:       w.Now().UTC().Format(time.RFC3339),
		Type:     evtType,
		EntityID: entityID,
		Payload:  data,
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	pipe := w.RDB.TxPipeline()
	pipe.LPush(ctx, w.listKey(), raw)
	pipe.LTrim(ctx, w.listKey(), 0, maxRedisEvents-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (w RedisJournal) Latest(ctx context.Context, n int, evtType string) ([]domain.Event, error) {
	if n <= 0 {
		n = defaultLatestPageSize
	}
	raws, err := w.RDB.LRange(ctx, w.listKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	var res []domain.Event
	for _, raw := range raws {
		var e domain.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		if evtType != "" && e.Type != evtType {
			continue
		}
		res = append(res, e)
		if len(res) == n {
			break
		}
	}
	return res, nil
}

// After walks the list from its tail so entries come back oldest first.
// Events trimmed off the cap are gone.
func (w RedisJournal) After(ctx context.Context, cursor int64, n int) ([]domain.Event, error) {
	if n <= 0 {
		n = defaultLatestPageSize
	}
	raws, err := w.RDB.LRange(ctx, w.listKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	var res []domain.Event
	for i := len(raws) - 1; i >= 0; i-- {
		var e domain.Event
		if err := json.Unmarshal([]byte(raws[i]), &e); err != nil {
			continue
		}
		if e.ID <= cursor {
			continue
		}
		res = append(res, e)
		if len(res) == n {
			break
		}
	}
	return res, nil
}
