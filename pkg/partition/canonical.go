package partition

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Renormalize rewrites the labels to 0..k-1, numbering blocks in the order
// they first appear when scanning vertices.
func (p *Partition) Renormalize() {
	remap := make(map[int]int)
	changed := false
	for v, l := range p.labels {
		nl, ok := remap[l]
		if !ok {
			nl = len(remap)
			remap[l] = nl
		}
		if nl != l {
			p.labels[v] = nl
			changed = true
		}
	}
	if changed {
		p.memo.reset()
	}
}

// IsNonDegenerate reports whether the labels are exactly 0..maxLabel.
func (p *Partition) IsNonDegenerate() bool {
	return p.MaxLabel()+1 == p.NumBlocks()
}

// IsCanonical reports whether blocks first appear in label order 0, 1, 2, ...
// when scanning vertices.
func (p *Partition) IsCanonical() bool {
	next := 0
	for _, l := range p.labels {
		switch {
		case l == next:
			next++
		case l > next:
			return false
		}
	}
	return true
}

// Equal reports whether every vertex carries the same label in p and o.
// Relabelings are not equal.
func (p *Partition) Equal(o *Partition) bool {
	if len(p.labels) != len(o.labels) {
		return false
	}
	for v, l := range p.labels {
		if o.labels[v] != l {
			return false
		}
	}
	return true
}

// Hash returns a stable hash of the raw label assignment.
func (p *Partition) Hash() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 8)
	for _, l := range p.labels {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(l))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// String renders the labels as "[l0-l1-...-l(n-1)]".
func (p *Partition) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for v, l := range p.labels {
		if v > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(l))
	}
	b.WriteByte(']')
	return b.String()
}
