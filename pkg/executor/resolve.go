package executor

import (
	"github.com/sanketsaagar/membrane-sim/pkg/objects"
	"github.com/sanketsaagar/membrane-sim/pkg/rules"
	"github.com/sanketsaagar/membrane-sim/pkg/store"
)

// resolveForParallel builds the ResolvedObjects for a descriptor whose
// Take-mode objects were already pre-removed in the parallel pre-pass
// (desc.TakeSet/TakeRand). Ref-mode objects are borrowed from st now,
// under st's own read lock; this function never mutates st. Any
// demanded tag that has gone missing is returned in missing and the
// caller skips the descriptor.
func resolveForParallel(desc *rules.Descriptor, st *store.ObjectStore) (*rules.ResolvedObjects, []objects.Tag) {
	b := rules.NewBuilder()
	var missing []objects.Tag

	for _, td := range desc.Condition.Tagged {
		if td.Kind != rules.DemandSpecificTag {
			continue
		}
		switch td.UseMode {
		case rules.UseNone, rules.UseTag:
			b.PutSpecific(td.Tag, td.UseMode, nil)
		case rules.UseRef:
			obj, ok := st.Get(td.Tag)
			if !ok {
				missing = append(missing, td.Tag)
				continue
			}
			b.PutSpecific(td.Tag, rules.UseRef, obj)
		case rules.UseTake:
			obj, ok := desc.TakeSet[td.Tag]
			if !ok {
				missing = append(missing, td.Tag)
				continue
			}
			b.PutSpecific(td.Tag, rules.UseTake, obj)
		}
	}

	randIdx := 0
	for _, td := range desc.Condition.Tagged {
		if td.Kind != rules.DemandRandomTags {
			continue
		}
		tags := desc.RandomSelections[randIdx]
		switch td.UseMode {
		case rules.UseNone, rules.UseTag:
			b.PutRandomGroup(td.UseMode, tags, nil)
		case rules.UseRef:
			objs := make([]objects.Object, len(tags))
			for i, t := range tags {
				o, ok := st.Get(t)
				if !ok {
					missing = append(missing, t)
					continue
				}
				objs[i] = o
			}
			b.PutRandomGroup(rules.UseRef, tags, objs)
		case rules.UseTake:
			b.PutRandomGroup(rules.UseTake, tags, desc.TakeRand[randIdx])
		}
		randIdx++
	}

	return b.Build(), missing
}

// takeCount returns how many units a condition's Take-mode demands
// remove from the store when satisfied — tagged instances count as 1
// each, untagged demands count by their amount — used to tally the
// executor's removed stat for the sequential path, where resolution
// and removal happen in the same step.
func takeCount(cond rules.Condition) int {
	n := 0
	for _, td := range cond.Tagged {
		if td.UseMode != rules.UseTake {
			continue
		}
		switch td.Kind {
		case rules.DemandSpecificTag:
			n++
		case rules.DemandRandomTags:
			n += td.RandK
		}
	}
	for _, u := range cond.Untagged {
		if u.Take {
			n += int(u.Amount)
		}
	}
	return n
}

// verifyAndResolveSequential re-checks a descriptor's condition against
// the current state of st (earlier rules in the sequential pass may
// have consumed objects it needs) and, if still satisfied, resolves it:
// Take removes now, Ref borrows now, Tag just copies the tag. A
// Take-mode untagged demand decrements the pool as part of this check.
// Reports false if the rule is no longer applicable; the caller
// silently skips it.
func verifyAndResolveSequential(desc *rules.Descriptor, st *store.ObjectStore) (*rules.ResolvedObjects, bool) {
	for _, u := range desc.Condition.Untagged {
		if st.AmountOf(u.Type) < u.Amount {
			return nil, false
		}
		// A consuming demand draws from the untagged pool specifically,
		// not from the aggregate that tagged instances contribute to.
		if u.Take && st.UntaggedPoolOf(u.Type) < u.Amount {
			return nil, false
		}
	}
	for _, td := range desc.Condition.Tagged {
		if td.Kind == rules.DemandSpecificTag && !st.Contains(td.Tag) {
			return nil, false
		}
	}
	randIdx := 0
	for _, td := range desc.Condition.Tagged {
		if td.Kind != rules.DemandRandomTags {
			continue
		}
		for _, t := range desc.RandomSelections[randIdx] {
			if !st.Contains(t) {
				return nil, false
			}
		}
		randIdx++
	}

	for _, u := range desc.Condition.Untagged {
		if u.Take {
			st.DecreaseUntagged(u.Type, u.Amount)
		}
	}

	b := rules.NewBuilder()
	for _, td := range desc.Condition.Tagged {
		if td.Kind != rules.DemandSpecificTag {
			continue
		}
		switch td.UseMode {
		case rules.UseNone, rules.UseTag:
			b.PutSpecific(td.Tag, td.UseMode, nil)
		case rules.UseRef:
			obj, _ := st.Get(td.Tag)
			b.PutSpecific(td.Tag, rules.UseRef, obj)
		case rules.UseTake:
			obj, _ := st.Remove(td.Tag)
			b.PutSpecific(td.Tag, rules.UseTake, obj)
		}
	}
	randIdx = 0
	for _, td := range desc.Condition.Tagged {
		if td.Kind != rules.DemandRandomTags {
			continue
		}
		tags := desc.RandomSelections[randIdx]
		switch td.UseMode {
		case rules.UseNone, rules.UseTag:
			b.PutRandomGroup(td.UseMode, tags, nil)
		case rules.UseRef:
			objs := make([]objects.Object, len(tags))
			for i, t := range tags {
				objs[i], _ = st.Get(t)
			}
			b.PutRandomGroup(rules.UseRef, tags, objs)
		case rules.UseTake:
			objs := make([]objects.Object, len(tags))
			for i, t := range tags {
				objs[i], _ = st.Remove(t)
			}
			b.PutRandomGroup(rules.UseTake, tags, objs)
		}
		randIdx++
	}

	return b.Build(), true
}
