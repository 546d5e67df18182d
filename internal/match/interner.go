package match

// symbolID is a dictionary id for a categorical string column value.
type symbolID uint32

// Interner is a session-scoped string cache. All allele, accession,
// chromosome and variant ID columns are interned so join keys compare as
// fixed-width ids, and so ids stay comparable across every frame of a
// matching session (including shards combined later). Ids are assigned in
// first-seen order and are never evicted while the session lives.
type Interner struct {
	ids     map[string]symbolID
	strings []string
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]symbolID)}
}

// Intern returns the id for s, assigning the next id on first sight.
func (in *Interner) Intern(s string) symbolID {
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := symbolID(len(in.strings))
	in.ids[s] = id
	in.strings = append(in.strings, s)
	return id
}

// Lookup returns the string for an id previously returned by Intern.
func (in *Interner) Lookup(id symbolID) string {
	return in.strings[id]
}

// Len returns the number of distinct interned strings.
func (in *Interner) Len() int {
	return len(in.strings)
}
