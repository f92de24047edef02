package redis

import (
	"context"
	"fmt"
	"net"
	"path"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

// memoryHook answers the commands the store issues from an in-memory
// keyspace, so the client never dials.
type memoryHook struct {
	mu      sync.Mutex
	strings map[string]string
	ttls    map[string]int64
	hashes  map[string]map[string]string
	fail    error
}

func newMemoryHook() *memoryHook {
	return &memoryHook{
		strings: map[string]string{},
		ttls:    map[string]int64{},
		hashes:  map[string]map[string]string{},
	}
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, fmt.Errorf("memory hook: unexpected dial to %s", addr)
	}
}

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if err := h.process(cmd); err != nil {
				cmd.SetErr(err)
				return err
			}
		}
		return nil
	}
}

func (h *memoryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return h.process(cmd)
	}
}

func (h *memoryHook) process(cmd redis.Cmder) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail != nil {
		return h.fail
	}

	args := cmd.Args()
	switch c := cmd.(type) {
	case *redis.StatusCmd:
		switch cmd.Name() {
		case "ping":
			c.SetVal("PONG")
		case "set":
			key := args[1].(string)
			h.strings[key] = fmt.Sprint(args[2])
			if len(args) == 5 {
				ttl, _ := strconv.ParseInt(fmt.Sprint(args[4]), 10, 64)
				h.ttls[key] = ttl
			}
			c.SetVal("OK")
		default:
			return fmt.Errorf("memory hook: unsupported command %q", cmd.Name())
		}
	case *redis.StringCmd:
		val, ok := h.strings[args[1].(string)]
		if !ok {
			return redis.Nil
		}
		c.SetVal(val)
	case *redis.IntCmd:
		switch cmd.Name() {
		case "del":
			var n int64
			for _, k := range args[1:] {
				if _, ok := h.strings[k.(string)]; ok {
					delete(h.strings, k.(string))
					delete(h.ttls, k.(string))
					n++
				}
			}
			c.SetVal(n)
		case "hincrby":
			key, field := args[1].(string), args[2].(string)
			incr, _ := strconv.ParseInt(fmt.Sprint(args[3]), 10, 64)
			if h.hashes[key] == nil {
				h.hashes[key] = map[string]string{}
			}
			cur, _ := strconv.ParseInt(h.hashes[key][field], 10, 64)
			h.hashes[key][field] = strconv.FormatInt(cur+incr, 10)
			c.SetVal(cur + incr)
		default:
			return fmt.Errorf("memory hook: unsupported command %q", cmd.Name())
		}
	case *redis.MapStringStringCmd:
		out := map[string]string{}
		for k, v := range h.hashes[args[1].(string)] {
			out[k] = v
		}
		c.SetVal(out)
	case *redis.ScanCmd:
		pattern := "*"
		for i := 2; i+1 < len(args); i += 2 {
			if args[i] == "match" {
				pattern = args[i+1].(string)
			}
		}
		var page []string
		for k := range h.strings {
			if ok, _ := path.Match(pattern, k); ok {
				page = append(page, k)
			}
		}
		sort.Strings(page)
		c.SetVal(page, 0)
	default:
		return fmt.Errorf("memory hook: unsupported command %q", cmd.Name())
	}
	return nil
}

func (h *memoryHook) setFail(err error) {
	h.mu.Lock()
	h.fail = err
	h.mu.Unlock()
}

// newMemoryStore returns a store backed by a memoryHook.
func newMemoryStore(t *testing.T) (*Store, *memoryHook) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "memory:0"})
	t.Cleanup(func() { _ = client.Close() })
	hook := newMemoryHook()
	client.AddHook(hook)
	return NewStore(client, 0), hook
}
