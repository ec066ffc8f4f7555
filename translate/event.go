package translate

// Document event kinds the translator understands out of the box. Hosts may
// submit additional kinds; the default mapper handles anything shaped like a
// plain document event.
const (
	VerbDocumentCreated   = "documentCreated"
	VerbDocumentModified  = "documentModified"
	VerbDocumentRemoved   = "documentRemoved"
	VerbDocumentRestored  = "documentRestored"
	VerbDocumentPublished = "documentPublished"
	VerbWorkflowStarted   = "workflowStarted"
)

// Principal is the acting user attached to a source event.
type Principal struct {
	Name      string
	FirstName string
	LastName  string

	// System marks the trusted internal principal; its actions produce no
	// activities.
	System bool
}

// Document describes the subject of a source event along with the state
// flags the exclusion policy inspects.
type Document struct {
	Repository string
	ID         string
	ParentID   string

	Shallow              bool
	HiddenFromNavigation bool
	SystemDocument       bool
	Version              bool
	Proxy                bool
}

// Ancestor is one container in the subject's containment chain, ordered from
// the root down to the direct parent.
type Ancestor struct {
	ID string

	// ScopeContainer flags a fan-out boundary: each flagged ancestor gets its
	// own scoped copy of the activity.
	ScopeContainer bool
}

// SourceEvent is one raw occurrence handed to the translator. Kind-specific
// fields are only read by the matching mapper.
type SourceEvent struct {
	Kind      string
	Principal Principal
	Document  Document
	Ancestors []Ancestor

	// VersionLabel is the label a document was restored to (documentRestored).
	VersionLabel string

	// SourceDocumentID is the published document (documentPublished); the
	// event's Document is then the receiving section.
	SourceDocumentID string

	// WorkflowName is the started workflow (workflowStarted).
	WorkflowName string
}

// subjectKey identifies an event for in-bundle deduplication.
func (e SourceEvent) subjectKey() string {
	return e.Kind + "|" + e.Document.Repository + "|" + e.Document.ID
}
