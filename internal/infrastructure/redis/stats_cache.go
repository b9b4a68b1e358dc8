package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

var _ ports.StatsCache = (*StatsCache)(nil)

// StatsCache guarda las estadísticas de kardex en un hash por empresa (un campo por ventana de
// días). Invalidar es borrar el hash. Los errores de Redis se registran y se tratan como miss.
type StatsCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewStatsCache construye la caché. ttl acota la vida de una entrada aunque no haya movimientos.
func NewStatsCache(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *StatsCache {
	if log == nil {
		log = logger.Nop()
	}
	return &StatsCache{rdb: rdb, ttl: ttl, log: log.Named("stats-cache")}
}

func statsKey(companyID int64) string {
	return "kardex:stats:" + strconv.FormatInt(companyID, 10)
}

func (c *StatsCache) Get(ctx context.Context, companyID int64, days int) (*dto.KardexStats, bool) {
	raw, err := c.rdb.HGet(ctx, statsKey(companyID), strconv.Itoa(days)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn().Err(err).Int64("company_id", companyID).Msg("no se pudo leer la caché de estadísticas")
		}
		return nil, false
	}
	var stats dto.KardexStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, companyID int64, days int, stats *dto.KardexStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	key := statsKey(companyID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(days), raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn().Err(err).Int64("company_id", companyID).Msg("no se pudo guardar la caché de estadísticas")
	}
}

func (c *StatsCache) Invalidate(ctx context.Context, companyID int64) {
	if err := c.rdb.Del(ctx, statsKey(companyID)).Err(); err != nil {
		c.log.Warn().Err(err).Int64("company_id", companyID).Msg("no se pudo invalidar la caché de estadísticas")
	}
}
