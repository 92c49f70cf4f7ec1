package document

import "github.com/tsawler/stitch/core"

// Kind is the structural role of an object, taken from its /Type entry.
type Kind int

const (
	KindOther Kind = iota
	KindCatalog
	KindPages
	KindPage
	KindOutlines
	KindOutline
)

var kindNames = map[Kind]string{
	KindOther:    "Other",
	KindCatalog:  "Catalog",
	KindPages:    "Pages",
	KindPage:     "Page",
	KindOutlines: "Outlines",
	KindOutline:  "Outline",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Structural reports whether objects of this kind make up the document
// skeleton rather than page content.
func (k Kind) Structural() bool {
	return k != KindOther
}

// Classify decodes the role of obj from the /Type of its dictionary. Streams
// are classified by their stream dictionary.
func Classify(obj core.Object) Kind {
	var dict core.Dict
	switch v := obj.(type) {
	case core.Dict:
		dict = v
	case *core.Stream:
		dict = v.Dict
	default:
		return KindOther
	}

	typ, _ := dict.GetName("Type")
	switch typ {
	case "Catalog":
		return KindCatalog
	case "Pages":
		return KindPages
	case "Page":
		return KindPage
	case "Outlines":
		return KindOutlines
	case "Outline":
		return KindOutline
	default:
		return KindOther
	}
}
