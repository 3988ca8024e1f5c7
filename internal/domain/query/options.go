// Package query turns declarative list options (where__/order__/take/page)
// into a Descriptor that storage layers execute, and shapes paginated results.
package query

import (
	"net/url"
	"strings"

	"postboard/internal/core/apperror"
)

// Pair is a single key/value query option.
type Pair struct {
	Key   string
	Value string
}

// Options is an ordered list of query options.
// Order matters: sort clauses take precedence in the order they were written.
// Methods never mutate the receiver.
type Options []Pair

// ParseQuery decodes a raw query string keeping the literal order of keys.
// url.ParseQuery is not used because url.Values forgets ordering.
func ParseQuery(raw string) (Options, error) {
	var opts Options
	for raw != "" {
		var part string
		part, raw, _ = strings.Cut(raw, "&")
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, apperror.NewBadRequest(apperror.CodeInvalidInput, "malformed query string").
				WithDetail("key", k).
				WithCause(err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, apperror.NewBadRequest(apperror.CodeInvalidInput, "malformed query string").
				WithDetail("key", key).
				WithCause(err)
		}
		opts = append(opts, Pair{Key: key, Value: value})
	}
	return opts, nil
}

// MustParse is ParseQuery that panics on error. Use only for constants and tests.
func MustParse(raw string) Options {
	opts, err := ParseQuery(raw)
	if err != nil {
		panic(err)
	}
	return opts
}

// Get returns the first value stored under key.
func (o Options) Get(key string) (string, bool) {
	for _, p := range o {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// HasPrefix reports whether any key starts with prefix.
func (o Options) HasPrefix(prefix string) bool {
	for _, p := range o {
		if strings.HasPrefix(p.Key, prefix) {
			return true
		}
	}
	return false
}

// Set replaces the first occurrence of key in place and drops the others.
// A missing key is appended.
func (o Options) Set(key, value string) Options {
	out := make(Options, 0, len(o)+1)
	found := false
	for _, p := range o {
		if p.Key != key {
			out = append(out, p)
			continue
		}
		if !found {
			out = append(out, Pair{Key: key, Value: value})
			found = true
		}
	}
	if !found {
		out = append(out, Pair{Key: key, Value: value})
	}
	return out
}

// Add appends a pair, keeping existing ones.
func (o Options) Add(key, value string) Options {
	out := make(Options, len(o), len(o)+1)
	copy(out, o)
	return append(out, Pair{Key: key, Value: value})
}

// Del removes every pair whose key is one of keys.
func (o Options) Del(keys ...string) Options {
	out := make(Options, 0, len(o))
	for _, p := range o {
		drop := false
		for _, k := range keys {
			if p.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, p)
		}
	}
	return out
}

// Encode renders the options as a query string in their current order.
func (o Options) Encode() string {
	var sb strings.Builder
	for i, p := range o {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
