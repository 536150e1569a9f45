package partition

import (
	"fmt"
	"strings"

	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/qi"
)

// CalculateQiNumber computes and caches the exact qi-number over g.
func (p *Partition) CalculateQiNumber(g *graph.Graph) int {
	return p.CalculateQiNumberWith(nil, g, 0).Value
}

// CalculateQiNumberAtLeast computes and caches the qi-number over g with the
// default engine, stopping once threshold is proven. The value may be
// qi.Undetermined.
func (p *Partition) CalculateQiNumberAtLeast(g *graph.Graph, threshold int) int {
	return p.CalculateQiNumberWith(qi.DefaultEngine(), g, threshold).Value
}

// exactSignature marks memoized values from ExactQiAtLeast, which no
// engine setting can change.
const exactSignature = "exact"

// CalculateQiNumberWith computes the qi-number over g with e (nil means the
// default engine) and caches it. A cached value is reused when it was
// computed for g exactly, or with the same threshold by an engine with the
// same signature.
func (p *Partition) CalculateQiNumberWith(e *qi.Engine, g *graph.Graph, threshold int) qi.Result {
	p.checkGraph(g)
	if threshold < 0 {
		threshold = 0
	}
	if e == nil {
		e = qi.DefaultEngine()
	}
	sig := e.Signature()
	if res, ok := p.cachedQi(g, threshold, sig); ok {
		return res
	}
	res := e.Compute(p.Quotient(g), threshold)
	p.storeQi(g, threshold, sig, res)
	return res
}

// ExactQiAtLeast returns qi.ExactAtLeast of the quotient over g, whatever
// its size. The oracle is never consulted, so a value below threshold is
// always the true qi-number.
func (p *Partition) ExactQiAtLeast(g *graph.Graph, threshold int) int {
	p.checkGraph(g)
	if threshold < 0 {
		threshold = 0
	}
	if res, ok := p.cachedQi(g, threshold, exactSignature); ok {
		return res.Value
	}
	q := p.Quotient(g)
	res := qi.Result{Value: qi.ExactAtLeast(q, threshold), Method: qi.MethodExact}
	if q.Size() <= 1 {
		res.Method = qi.MethodTrivial
	}
	p.storeQi(g, threshold, exactSignature, res)
	return res.Value
}

// SetQiResult stores a qi result computed elsewhere, such as one read from a
// cache, as if CalculateQiNumberWith(e, g, threshold) had produced it.
func (p *Partition) SetQiResult(e *qi.Engine, g *graph.Graph, threshold int, res qi.Result) {
	p.checkGraph(g)
	if threshold < 0 {
		threshold = 0
	}
	if e == nil {
		e = qi.DefaultEngine()
	}
	p.storeQi(g, threshold, e.Signature(), res)
}

func (p *Partition) cachedQi(g *graph.Graph, threshold int, sig string) (qi.Result, bool) {
	m := &p.memo
	if !m.qiSet || m.qiGraph != g {
		return qi.Result{}, false
	}
	if m.qiThreshold == 0 || (m.qiThreshold == threshold && m.qiEngine == sig) {
		return m.qi, true
	}
	return qi.Result{}, false
}

func (p *Partition) storeQi(g *graph.Graph, threshold int, sig string, res qi.Result) {
	m := &p.memo
	m.qiGraph, m.qi, m.qiThreshold, m.qiEngine, m.qiSet = g, res, threshold, sig, true
}

// QiNumber returns the cached qi-number. It returns qi.Undetermined both when
// nothing has been computed since the last change and when the last
// computation was undetermined; use QiResult to tell the two apart.
func (p *Partition) QiNumber() int {
	if !p.memo.qiSet {
		return qi.Undetermined
	}
	return p.memo.qi.Value
}

// QiResult returns the cached qi result and whether there is one.
func (p *Partition) QiResult() (qi.Result, bool) {
	return p.memo.qi, p.memo.qiSet
}

// DebugString extends String with the block count and, when known, the
// interior edge count over g, the qi-number and the operation label.
// g may be nil.
func (p *Partition) DebugString(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString(p.String())
	fmt.Fprintf(&b, " blocks=%d", p.NumBlocks())
	if g != nil {
		fmt.Fprintf(&b, " interior=%d", p.InteriorEdgeCount(g))
	}
	if res, ok := p.QiResult(); ok && res.Determined() {
		fmt.Fprintf(&b, " qi=%d", res.Value)
	} else {
		b.WriteString(" qi=?")
	}
	if p.Operation != "" {
		fmt.Fprintf(&b, " op=%q", p.Operation)
	}
	return b.String()
}
