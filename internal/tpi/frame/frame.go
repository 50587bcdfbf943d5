package frame

import (
	"strings"

	"github.com/danmuck/evlctl/internal/tpi"
)

// Split breaks one receive chunk into CRLF-terminated segments.
//
// segments holds every complete segment without its terminator. fragment is
// whatever followed the last terminator and is "" when the chunk ended on
// one. Split keeps no state: a fragment is never joined with the next chunk,
// so callers must discard it. Cross-chunk reassembly belongs here.
func Split(chunk string) (segments []string, fragment string) {
	parts := strings.Split(chunk, tpi.PacketTerminator)
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// Join renders packets as one terminated chunk, the inverse of Split for a
// chunk with no fragment.
func Join(packets ...string) string {
	var b strings.Builder
	for _, p := range packets {
		b.WriteString(p)
		b.WriteString(tpi.PacketTerminator)
	}
	return b.String()
}
