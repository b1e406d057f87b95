// Package cache реализует кэш профилей пользователей поверх Redis.
//
// Кэш никогда не является источником истины: промах или ошибка кэша
// означают чтение из базы данных.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/models"
)

const profileKeyPrefix = "profile:"

// Cache хранит JSON-значения в Redis.
type Cache struct {
	Db  *redis.Client
	ttl time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		Username:     cfg.RedisUser,
		MaxRetries:   cfg.RedisMaxRetries,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisTimeout,
		WriteTimeout: cfg.RedisTimeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, ttl: cfg.ProfileTTL}, nil
}

// Get читает значение по ключу в result. Возвращает false, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в JSON с указанным временем жизни.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.Db.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// profileEntry — запись профиля в кэше. Version — updatedAt в микросекундах;
// Deleted помечает удалённого пользователя до истечения TTL.
type profileEntry struct {
	Version int64           `json:"version"`
	Deleted bool            `json:"deleted,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// storeProfileScript записывает профиль, только если в кэше нет более свежей
// версии и пользователь не помечен удалённым.
var storeProfileScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, entry = pcall(cjson.decode, cur)
	if ok and type(entry) == 'table' then
		if entry.deleted then
			return 0
		end
		local version = tonumber(entry.version)
		if version ~= nil and version >= tonumber(ARGV[2]) then
			return 0
		end
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// GetProfile возвращает закэшированный профиль пользователя.
// found == true при p == nil означает, что пользователь удалён.
func (c *Cache) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, bool, error) {
	var entry profileEntry
	found, err := c.Get(ctx, profileKey(id), &entry)
	if err != nil || !found {
		return nil, false, err
	}
	if entry.Deleted {
		return nil, true, nil
	}
	if entry.Profile == nil {
		return nil, false, nil
	}
	return entry.Profile, true, nil
}

// SetProfile кэширует профиль на время ProfileTTL. Запись не перетирает
// более свежую версию профиля и пометку об удалении.
func (c *Cache) SetProfile(ctx context.Context, p *models.Profile) error {
	const op = "cache.SetProfile"

	version := p.UpdatedAt.UnixMicro()
	data, err := json.Marshal(profileEntry{Version: version, Profile: p})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = storeProfileScript.Run(ctx, c.Db, []string{profileKey(p.ID)},
		data, version, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkProfileDeleted помечает пользователя удалённым на время ProfileTTL.
func (c *Cache) MarkProfileDeleted(ctx context.Context, id uuid.UUID) error {
	return c.Set(ctx, profileKey(id), profileEntry{Deleted: true}, c.ttl)
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

func profileKey(id uuid.UUID) string {
	return profileKeyPrefix + id.String()
}

// Noop — кэш, который ничего не хранит. Используется, когда Redis не настроен.
type Noop struct{}

// GetProfile всегда сообщает о промахе.
func (Noop) GetProfile(context.Context, uuid.UUID) (*models.Profile, bool, error) {
	return nil, false, nil
}

// SetProfile ничего не делает.
func (Noop) SetProfile(context.Context, *models.Profile) error { return nil }

// MarkProfileDeleted ничего не делает.
func (Noop) MarkProfileDeleted(context.Context, uuid.UUID) error { return nil }
