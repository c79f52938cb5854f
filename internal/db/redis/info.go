package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/localdocs/internal/db"
)

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.IndexInfo(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, db.ErrIndexNotFound) {
		return false, nil
	}
	return false, err
}

// IndexInfo reads FT.INFO. Both the Redis layout (num_docs, indexing) and the
// valkey-search layout (num_docs, state, backfill_in_progress) are understood.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") ||
			isRedisErr(err, "not found") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return parseIndexInfo(name, raw), nil
}

func parseIndexInfo(name string, raw []rueidis.RedisMessage) *db.IndexInfo {
	info := &db.IndexInfo{Name: name}
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		val := raw[i+1]
		switch strings.ToLower(key) {
		case "index_name":
			if s, err := val.ToString(); err == nil {
				info.Name = s
			}
		case "num_docs":
			info.NumDocs = asInt(val)
		case "num_records":
			info.NumRecords = asInt(val)
		case "indexing", "backfill_in_progress":
			if asInt(val) > 0 {
				info.Indexing = true
			}
		case "state":
			if s, err := val.ToString(); err == nil {
				info.State = s
			}
		case "attributes", "fields":
			if dim := vectorDim(val); dim > 0 {
				info.VectorDim = dim
			}
		}
	}
	return info
}

// asInt reads integers sent either as RESP integers or as numeric strings ("12", "1.5e+01").
func asInt(m rueidis.RedisMessage) int64 {
	if n, err := m.AsInt64(); err == nil {
		return n
	}
	s, err := m.ToString()
	if err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// vectorDim walks the attribute list looking for a dim / dimensions pair.
func vectorDim(m rueidis.RedisMessage) int {
	arr, err := m.ToArray()
	if err != nil {
		return 0
	}
	for i := range arr {
		if arr[i].IsString() {
			s, _ := arr[i].ToString()
			ls := strings.ToLower(s)
			if (ls == "dim" || ls == "dimensions") && i+1 < len(arr) {
				if d := asInt(arr[i+1]); d > 0 {
					return int(d)
				}
			}
			continue
		}
		if d := vectorDim(arr[i]); d > 0 {
			return d
		}
	}
	return 0
}
