package translate

// ExclusionPredicate reports whether an event should be dropped before
// translation. Predicates are checked in order; the first hit wins.
type ExclusionPredicate func(event SourceEvent) bool

// DefaultExclusions returns the standard drop list: subjects that are not
// live, visible documents, and actions of the system principal.
func DefaultExclusions() []ExclusionPredicate {
	return []ExclusionPredicate{
		func(e SourceEvent) bool { return e.Document.Shallow },
		func(e SourceEvent) bool { return e.Document.HiddenFromNavigation },
		func(e SourceEvent) bool { return e.Document.SystemDocument },
		func(e SourceEvent) bool { return e.Document.Version },
		func(e SourceEvent) bool { return e.Document.Proxy },
		func(e SourceEvent) bool { return e.Principal.System },
	}
}
