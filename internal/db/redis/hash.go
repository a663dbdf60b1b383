package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matsearch/internal/db"
)

// HSet writes fields into the hash at key.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	if err := s.do(ctx, s.hsetCmd(key, fields)).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return nil
}

func (s *Store) hsetCmd(key string, fields map[string]string) rueidis.Completed {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}

// HGetAllMulti reads several hashes in one pipelined round trip.
// A missing key yields an empty map at its position.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make(rueidis.Commands, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, s.b().Hgetall().Key(key).Build())
	}

	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		out[i] = m
	}
	return out, nil
}

// HGet returns db.ErrKeyNotFound when the key or the field is absent.
func (s *Store) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := s.do(ctx, s.b().Hget().Key(key).Field(field).Build()).ToString()
	switch {
	case err == nil:
		return v, nil
	case rueidis.IsRedisNil(err):
		return "", db.ErrKeyNotFound
	default:
		return "", &db.Error{Op: db.OpHGet, Err: err}
	}
}

// HSetNX writes field only when it is absent and reports whether it did.
func (s *Store) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	n, err := s.do(ctx, s.b().Hsetnx().Key(key).Field(field).Value(value).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpHSetNX, Err: err}
	}
	return n == 1, nil
}
