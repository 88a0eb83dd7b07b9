package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// RedisStore guarda cada lead como JSON em "<prefix><id>" e mantém
// o conjunto de ids em "<prefix>ids" para o scan.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		Client: client,
		Prefix: entity.TableName + ":",
	}
}

func (s *RedisStore) key(id string) string {
	return s.Prefix + id
}

func (s *RedisStore) idsKey() string {
	return s.Prefix + "ids"
}

func (s *RedisStore) Get(ctx context.Context, id string) (*entity.Lead, bool, error) {
	raw, err := s.Client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("erro ao buscar lead no redis: %w", err)
	}

	var lead entity.Lead
	if err := json.Unmarshal(raw, &lead); err != nil {
		return nil, false, fmt.Errorf("lead corrompida no redis: %w", err)
	}
	return &lead, true, nil
}

func (s *RedisStore) Put(ctx context.Context, lead *entity.Lead) error {
	raw, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("erro ao serializar lead: %w", err)
	}

	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, s.key(lead.ID), raw, 0)
	pipe.SAdd(ctx, s.idsKey(), lead.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("erro ao gravar lead no redis: %w", err)
	}
	return nil
}

// Update lê, altera e regrava; sem WATCH, segue last-write-wins.
func (s *RedisStore) Update(ctx context.Context, id string, changes entity.LeadUpdate) error {
	lead, found, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if changes.ClientSince != nil {
		lead.ClientSince = *changes.ClientSince
	}
	return s.Put(ctx, lead)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.Client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.SRem(ctx, s.idsKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("erro ao deletar lead no redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Scan(ctx context.Context) (*entity.ScanOutput, error) {
	ids, err := s.Client.SMembers(ctx, s.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("erro ao listar ids no redis: %w", err)
	}
	if len(ids) == 0 {
		return entity.NewScanOutput(nil), nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}

	values, err := s.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("erro ao listar leads no redis: %w", err)
	}

	leads := make([]entity.Lead, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // id órfão no conjunto
		}
		var lead entity.Lead
		if err := json.Unmarshal([]byte(raw), &lead); err != nil {
			return nil, fmt.Errorf("lead corrompida no redis: %w", err)
		}
		leads = append(leads, lead)
	}

	return entity.NewScanOutput(leads), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}
