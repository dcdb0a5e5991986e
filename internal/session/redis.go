package session

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/entrada/internal/observability/logger"
)

type redisStore struct {
	c      *rdb.Client
	prefix string
}

// NewRedisStore crea un store respaldado en redis para sesiones que
// sobreviven reinicios del proceso.
func NewRedisStore(addr string, db int, prefix string) Store {
	return &redisStore{
		c:      rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix: prefix,
	}
}

// Get devuelve (nil, false) tanto para una key inexistente como para
// una falla de redis; la falla queda logueada para que un outage no se
// confunda en silencio con "no hay sesión".
func (r *redisStore) Get(k string) ([]byte, bool) {
	b, err := r.c.Get(context.Background(), r.prefix+k).Bytes()
	if err != nil {
		if err != rdb.Nil {
			logger.L().Warn("session: redis get falló", logger.Err(err))
		}
		return nil, false
	}
	return b, true
}

func (r *redisStore) Set(k string, v []byte, ttl time.Duration) {
	if err := r.c.Set(context.Background(), r.prefix+k, v, ttl).Err(); err != nil {
		logger.L().Warn("session: redis set falló", logger.Err(err))
	}
}

func (r *redisStore) Delete(k string) {
	if err := r.c.Del(context.Background(), r.prefix+k).Err(); err != nil {
		logger.L().Warn("session: redis del falló", logger.Err(err))
	}
}

func (r *redisStore) Close() error { return r.c.Close() }
