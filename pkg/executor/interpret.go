package executor

import (
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
)

// interpretEffect walks a rule's effect list once, staging every
// mutation instead of applying it. Stop raises halt in place, but the
// tick stays atomic regardless: all staged commits still happen, and
// only the evolve loop's end-of-tick check observes the flag.
func interpretEffect(eff rules.Effect, resolved *rules.ResolvedObjects, halt *HaltFlag) StagedMutation {
	var out StagedMutation
	for _, op := range eff {
		switch o := op.(type) {
		case rules.CreateObj:
			if obj := o.F(resolved); obj != nil {
				out.ToAdd = append(out.ToAdd, obj)
			}
		case rules.CreateObjs:
			out.ToAdd = append(out.ToAdd, o.F(resolved)...)
		case rules.RemoveObj:
			out.ToRemove = append(out.ToRemove, o.F(resolved))
		case rules.RemoveObjs:
			out.ToRemove = append(out.ToRemove, o.F(resolved)...)
		case rules.IncreaseUntagged:
			out.ToIncr = append(out.ToIncr, AmountDelta{Type: o.Type, Amount: o.Amount})
		case rules.DecreaseUntagged:
			out.ToDecr = append(out.ToDecr, AmountDelta{Type: o.Type, Amount: o.Amount})
		case rules.RemoveUntagged:
			out.RemoveUntaggedTypes = append(out.RemoveUntaggedTypes, o.Type)
		case rules.Stop:
			halt.Set()
		case rules.Pause, rules.DissolveMem:
			// Reserved for the hierarchical orchestration layer.
		}
	}
	return out
}
