package query

import (
	"strconv"
	"strings"
)

// Cursor keys, one per id direction.
const (
	CursorKeyAfter  = WherePrefix + Separator + "id" + Separator + OpMoreThan
	CursorKeyBefore = WherePrefix + Separator + "id" + Separator + OpLessThan
)

// CursorKey returns the option that continues a listing sorted in dir.
func CursorKey(dir Direction) string {
	if dir == Desc {
		return CursorKeyBefore
	}
	return CursorKeyAfter
}

// WithCursor returns opts positioned after the row with id after.
// The id bound in the listing direction and the page key are dropped, the
// effective take and default ordering are written out, and the cursor key
// comes last. Other keys, including an id bound in the opposite direction,
// keep their values and order.
func WithCursor(opts Options, d *Descriptor, c *Composer, after int64) Options {
	key := CursorKey(d.CursorDirection())
	next := opts.Del(key, KeyPage)
	if !next.Has(KeyTake) {
		next = next.Add(KeyTake, strconv.Itoa(d.Limit))
	}
	if !next.HasPrefix(OrderPrefix + Separator) {
		def := c.DefaultSort()
		next = next.Add(OrderPrefix+Separator+def.Field, string(def.Direction))
	}
	return next.Add(key, strconv.FormatInt(after, 10))
}

// NextURL joins base and the continued options into an absolute link.
func NextURL(base string, opts Options) string {
	q := opts.Encode()
	if q == "" {
		return base
	}
	if strings.Contains(base, "?") {
		return base + "&" + q
	}
	return base + "?" + q
}
