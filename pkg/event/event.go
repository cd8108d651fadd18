// Package event defines the time-block model for the weekly grid.
package event

import (
	"fmt"
	"time"

	"tableflip.dev/shiwake/pkg/classify"
)

// Status tracks the lifecycle of a time-block.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Cycle returns the next status in display order.
func (s Status) Cycle() Status {
	switch s {
	case StatusInProgress:
		return StatusCompleted
	case StatusCompleted:
		return StatusCancelled
	default:
		return StatusInProgress
	}
}

// EquipmentKind distinguishes the two meanings the equipment field carries
// depending on the classification path.
type EquipmentKind string

const (
	// KindEquipment identifies plant equipment on non-purchase project
	// branches.
	KindEquipment EquipmentKind = "equipment"
	// KindPurchaseItem identifies a purchased item on the 購入品 branch.
	KindPurchaseItem EquipmentKind = "purchase-item"
)

// EquipmentRef is a tagged reference: the same number/name pair means a
// different thing on the purchase branch.
type EquipmentRef struct {
	Kind   EquipmentKind `json:"kind,omitempty"`
	Number string        `json:"number,omitempty"`
	Name   string        `json:"name,omitempty"`
}

// Classification is the sealed variant carried by every event. Each variant
// holds only the fields that are meaningful to its branch, so switching the
// branch replaces the whole value and stale fields cannot survive.
type Classification interface {
	// Path returns the tab selections the variant encodes.
	Path() classify.Path
	// ActivityCode derives the 4-character code. It is never stored.
	ActivityCode() (string, error)

	isClassification()
}

// ProjectClass is the classification of a direct (project) time-block.
type ProjectClass struct {
	Sub            string       `json:"sub"`
	Detail         string       `json:"detail"`
	PurchaseOption byte         `json:"purchaseOption,omitempty"`
	Equipment      EquipmentRef `json:"equipment,omitempty"`
}

func (c ProjectClass) isClassification() {}

func (c ProjectClass) Path() classify.Path {
	return classify.Path{
		Top:            classify.TopProject,
		Sub:            c.Sub,
		Detail:         c.Detail,
		PurchaseOption: c.PurchaseOption,
	}
}

func (c ProjectClass) ActivityCode() (string, error) {
	return classify.Derive(c.Path())
}

// Normalize forces the equipment tag to match the branch: purchase-item on
// the 購入品 branch, plant equipment everywhere else.
func (c ProjectClass) Normalize() ProjectClass {
	if c.Equipment.Number == "" && c.Equipment.Name == "" {
		c.Equipment = EquipmentRef{}
		return c
	}
	if c.Sub == classify.PurchaseSub {
		c.Equipment.Kind = KindPurchaseItem
	} else {
		c.Equipment.Kind = KindEquipment
	}
	return c
}

// IndirectClass is the classification of an indirect time-block. It has no
// project, equipment, or purchase fields at all.
type IndirectClass struct {
	Sub    string `json:"sub"`
	Detail string `json:"detail"`
}

func (c IndirectClass) isClassification() {}

func (c IndirectClass) Path() classify.Path {
	return classify.Path{Top: classify.TopIndirect, Sub: c.Sub, Detail: c.Detail}
}

func (c IndirectClass) ActivityCode() (string, error) {
	return classify.Derive(c.Path())
}

// FromPath builds the variant matching a tab path.
func FromPath(p classify.Path) (Classification, error) {
	if !classify.Valid(p) {
		_, err := classify.Derive(p)
		return nil, err
	}
	switch p.Top {
	case classify.TopProject:
		return ProjectClass{Sub: p.Sub, Detail: p.Detail, PurchaseOption: p.PurchaseOption}.Normalize(), nil
	case classify.TopIndirect:
		return IndirectClass{Sub: p.Sub, Detail: p.Detail}, nil
	}
	return nil, fmt.Errorf("event: unsupported top tab %q", p.Top)
}

// Event is one time-block in the weekly grid.
type Event struct {
	ID          string
	EmployeeID  string
	Start       time.Time
	End         time.Time
	Title       string
	Description string
	ProjectCode string
	Class       Classification
	Status      Status
	Dirty       bool
}

// New creates a local event with a deterministic id derived from the
// employee id and the start timestamp.
func New(employeeID string, start, end time.Time, class Classification) *Event {
	return &Event{
		ID:         NewID(employeeID, start),
		EmployeeID: employeeID,
		Start:      start,
		End:        end,
		Class:      class,
		Status:     StatusInProgress,
	}
}

// NewID derives a client-side id. The remote store may replace it on save.
func NewID(employeeID string, start time.Time) string {
	return fmt.Sprintf("%s-%s", employeeID, start.Format("200601021504"))
}

// Duration reports the length of the block.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// ActivityCode derives the code from the classification. Events without a
// classification report an empty code.
func (e *Event) ActivityCode() string {
	if e.Class == nil {
		return ""
	}
	code, err := e.Class.ActivityCode()
	if err != nil {
		return ""
	}
	return code
}

// SetClass replaces the classification wholesale. Indirect events lose any
// project code, matching the policy that indirect work is never billed to a
// project.
func (e *Event) SetClass(class Classification) {
	e.Class = class
	if _, ok := class.(IndirectClass); ok {
		e.ProjectCode = ""
	}
}

// Clone returns an independent copy.
func (e *Event) Clone() *Event {
	cp := *e
	return &cp
}

// Palette is the fixed 10-entry presentation palette, indexed by the last
// digit of the project code.
var Palette = [10]string{
	"#5d8aa8",
	"#e9692c",
	"#6b8e23",
	"#b8860b",
	"#9370db",
	"#cd5c5c",
	"#20b2aa",
	"#c71585",
	"#708090",
	"#2e8b57",
}

const indirectColor = "#8a8a8a"

// Color returns the display color for the event. Indirect events share a
// single neutral color.
func (e *Event) Color() string {
	if e.ProjectCode == "" {
		return indirectColor
	}
	last := e.ProjectCode[len(e.ProjectCode)-1]
	if last < '0' || last > '9' {
		return indirectColor
	}
	return Palette[last-'0']
}
