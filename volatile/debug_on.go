//go:build volatiledebug

package volatile

// Debug reports whether runtime view checks are compiled in.
const Debug = true
