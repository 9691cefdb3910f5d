package router

import (
	"fmt"
	"strings"

	"github.com/switchboard-ai/switchboard/core"
)

// Combiner merges the successful results of several agents into one. Inputs
// arrive in selection order (never completion order), so any implementation
// that is a pure function of its inputs is deterministic under concurrency.
type Combiner interface {
	Combine(reqCtx *core.RequestContext, results []*core.Result) (*core.Result, error)
}

// ConcatCombiner is the default deterministic combiner. It joins response
// texts in input order and aggregates metadata:
//
//   - per-agent bags are preserved under "agents", tagged by agent name
//   - "contributors" lists the agent names in input order
//   - "confidence" is the maximum across inputs that report one
//   - "chunks_retrieved" is summed across inputs (semantically additive)
type ConcatCombiner struct {
	// Separator is placed between response texts. Defaults to a blank line.
	Separator string
}

// Combine implements Combiner.
func (c *ConcatCombiner) Combine(_ *core.RequestContext, results []*core.Result) (*core.Result, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("combine: no results")
	}
	sep := c.Separator
	if sep == "" {
		sep = "\n\n"
	}

	texts := make([]string, 0, len(results))
	for _, res := range results {
		texts = append(texts, res.Response)
	}

	out := core.NewResult("", strings.Join(texts, sep))
	mergeMetadata(out, results)
	return out, nil
}

// mergeMetadata applies the shared aggregation rules onto out.
func mergeMetadata(out *core.Result, results []*core.Result) {
	contributors := make([]string, 0, len(results))
	perAgent := make(map[string]map[string]any, len(results))

	var (
		maxConfidence float64
		hasConfidence bool
		chunks        int
		hasChunks     bool
	)
	for _, res := range results {
		contributors = append(contributors, res.Agent)
		bag := make(map[string]any, len(res.Metadata))
		for k, v := range res.Metadata {
			bag[k] = v
		}
		perAgent[res.Agent] = bag

		if conf, ok := res.Confidence(); ok {
			if !hasConfidence || conf > maxConfidence {
				maxConfidence = conf
			}
			hasConfidence = true
		}
		if n, ok := intMeta(res, "chunks_retrieved"); ok {
			chunks += n
			hasChunks = true
		}
	}

	out.SetMeta("contributors", contributors)
	out.SetMeta("agents", perAgent)
	if hasConfidence {
		out.SetMeta("confidence", maxConfidence)
	}
	if hasChunks {
		out.SetMeta("chunks_retrieved", chunks)
	}
}

func intMeta(res *core.Result, key string) (int, bool) {
	v, ok := res.Meta(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

var _ Combiner = (*ConcatCombiner)(nil)
