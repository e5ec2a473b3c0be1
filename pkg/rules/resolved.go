package rules

import "github.com/sanketsaagar/membrane-sim/pkg/objects"

// ResolvedObjects is the view an effect function receives: every object
// its rule's condition demanded, resolved per the use-mode declared for
// each demand. Effect functions read from it; they must not retain
// references to the underlying store.
type ResolvedObjects struct {
	specific map[objects.Tag]specificEntry
	tagSet   []objects.Tag // specific-tag demands with UseMode == UseTag, in declaration order

	random []randomGroup // one per DemandRandomTags entry, in declaration order
}

type specificEntry struct {
	mode UseMode
	obj  objects.Object // nil when mode == UseNone or UseTag
}

type randomGroup struct {
	mode UseMode
	tags []objects.Tag
	objs []objects.Object // nil entries when mode == UseNone or UseTag
}

// Builder assembles a ResolvedObjects. The effect executor builds one
// per applied rule; effect functions only ever see the finished,
// read-only ResolvedObjects.
type Builder struct {
	r ResolvedObjects
}

func NewBuilder() *Builder {
	return &Builder{r: ResolvedObjects{specific: make(map[objects.Tag]specificEntry)}}
}

// PutSpecific records the resolution of one specific-tag demand. obj is
// nil when mode is UseNone or UseTag (nothing to borrow or take).
func (b *Builder) PutSpecific(tag objects.Tag, mode UseMode, obj objects.Object) {
	b.r.specific[tag] = specificEntry{mode: mode, obj: obj}
	if mode == UseTag {
		b.r.tagSet = append(b.r.tagSet, tag)
	}
}

// PutRandomGroup records the resolution of one random-tags demand, in
// the order the condition declared it.
func (b *Builder) PutRandomGroup(mode UseMode, tags []objects.Tag, objs []objects.Object) {
	b.r.random = append(b.r.random, randomGroup{mode: mode, tags: tags, objs: objs})
}

func (b *Builder) Build() *ResolvedObjects { return &b.r }

// Ref returns the object resolved for a specific-tag demand whose
// use-mode was Ref or Take (both expose the object for reading).
func (r *ResolvedObjects) Ref(tag objects.Tag) (objects.Object, bool) {
	e, ok := r.specific[tag]
	if !ok || e.obj == nil {
		return nil, false
	}
	return e.obj, true
}

// Take is an alias for Ref: once resolved, a Take-mode object is
// exposed identically to a Ref-mode one — the difference is only in
// whether the store already removed it (Take) or merely lent it (Ref).
func (r *ResolvedObjects) Take(tag objects.Tag) (objects.Object, bool) {
	return r.Ref(tag)
}

// TagSet returns the tags recorded for specific-tag demands whose
// use-mode was Tag, in declaration order.
func (r *ResolvedObjects) TagSet() []objects.Tag {
	out := make([]objects.Tag, len(r.tagSet))
	copy(out, r.tagSet)
	return out
}

// RandGroup returns the i-th random-tags demand's resolved objects
// (Ref/Take mode) in the order the analyser sampled them.
func (r *ResolvedObjects) RandGroup(i int) []objects.Object {
	if i < 0 || i >= len(r.random) {
		return nil
	}
	return r.random[i].objs
}

// RandTags returns the i-th random-tags demand's chosen tags, whether
// or not its use-mode exposes the objects themselves.
func (r *ResolvedObjects) RandTags(i int) []objects.Tag {
	if i < 0 || i >= len(r.random) {
		return nil
	}
	return r.random[i].tags
}

// TheRandTagged returns the j-th object of the i-th random-tags group —
// a convenience for rules (like send/receive) that declare rand_tagged
// with k == 1.
func (r *ResolvedObjects) TheRandTagged(i, j int) (objects.Object, bool) {
	g := r.RandGroup(i)
	if j < 0 || j >= len(g) {
		return nil, false
	}
	return g[j], true
}
