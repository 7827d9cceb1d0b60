package fbx

// EventKind identifies which variant an [Event] holds.
type EventKind uint8

const (
	EventStartFbx EventKind = iota
	EventEndFbx
	EventStartNode
	EventEndNode
	EventComment
)

func (k EventKind) String() string {
	switch k {
	case EventStartFbx:
		return "start_fbx"
	case EventEndFbx:
		return "end_fbx"
	case EventStartNode:
		return "start_node"
	case EventEndNode:
		return "end_node"
	case EventComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Event is a single step of an FBX document, as yielded by [Reader.Next] and
// accepted by [Writer.Write].
//
// Only the fields relevant to Kind are meaningful:
//
//	StartFbx   -> Format
//	EndFbx     -> (none)
//	StartNode  -> Name, Properties
//	EndNode    -> (none)
//	Comment    -> Text
//
// A well-formed event stream starts with StartFbx, ends with EndFbx,
// balances every StartNode with exactly one EndNode, and carries Comment
// events only between StartFbx and EndFbx, and only for ASCII streams.
type Event struct {
	Kind EventKind

	Format     FbxFormatType
	Name       string
	Properties []Property
	Text       string
}

// NewStartFbx returns a StartFbx event announcing the document's format.
func NewStartFbx(format FbxFormatType) Event {
	return Event{Kind: EventStartFbx, Format: format}
}

// NewEndFbx returns the terminal EndFbx event.
func NewEndFbx() Event {
	return Event{Kind: EventEndFbx}
}

// NewStartNode returns a StartNode event for a node with the given name and
// properties, in order.
func NewStartNode(name string, properties []Property) Event {
	return Event{Kind: EventStartNode, Name: name, Properties: properties}
}

// NewEndNode returns an EndNode event closing the most recently opened node.
func NewEndNode() Event {
	return Event{Kind: EventEndNode}
}

// NewComment returns a Comment event. Comments are only valid in ASCII
// streams, between StartFbx and EndFbx.
func NewComment(text string) Event {
	return Event{Kind: EventComment, Text: text}
}
