package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matsearch/internal/db"
)

// SearchKNN runs an FT.SEARCH KNN query. Cosine distances come back as
// similarities 1-d, floored at zero.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	scoreField := "__" + q.Field() + "_score"

	args := []string{q.IndexName, fmt.Sprintf("*=>[KNN %d @%s $BLOB]", q.K, q.Field())}
	if n := len(q.ReturnFields); n > 0 {
		args = append(args, "RETURN", strconv.Itoa(n+1))
		args = append(args, q.ReturnFields...)
		args = append(args, scoreField)
	}
	args = append(args,
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", string(db.EncodeVector(q.Vector)),
		"DIALECT", "2",
	)

	reply, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseKNNReply(reply, scoreField)
}

// parseKNNReply reads the RESP2 layout [total, key, [field, value, ...], key, ...].
// Malformed entries are skipped.
func parseKNNReply(reply []rueidis.RedisMessage, scoreField string) (*db.SearchResult, error) {
	if len(reply) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := reply[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("total: %w", err)}
	}

	res := &db.SearchResult{Total: int(total)}
	for i := 1; i+1 < len(reply); i += 2 {
		key, err := reply[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := reply[i+1].ToArray()
		if err != nil {
			continue
		}

		fields := make(map[string]string, len(pairs)/2)
		for j := 0; j+1 < len(pairs); j += 2 {
			name, nerr := pairs[j].ToString()
			value, verr := pairs[j+1].ToString()
			if nerr == nil && verr == nil {
				fields[name] = value
			}
		}

		entry := db.SearchEntry{Key: key, Fields: fields}
		if d, err := strconv.ParseFloat(fields[scoreField], 64); err == nil {
			entry.Score = max(0, 1-d)
		}
		delete(fields, scoreField)
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}
