package event

import (
	"encoding/json"
	"fmt"
	"time"

	"tableflip.dev/shiwake/pkg/classify"
)

// classKind discriminates the classification variant on the wire and in the
// local cache.
const (
	kindProject  = "project"
	kindIndirect = "indirect"
)

type eventJSON struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employeeId"`
	Start        time.Time      `json:"startTime"`
	End          time.Time      `json:"endTime"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	ProjectCode  string         `json:"projectCode,omitempty"`
	Kind         string         `json:"kind,omitempty"`
	Project      *ProjectClass  `json:"project,omitempty"`
	Indirect     *IndirectClass `json:"indirect,omitempty"`
	ActivityCode string         `json:"activityCode,omitempty"`
	Status       Status         `json:"status,omitempty"`
	Dirty        bool           `json:"dirty,omitempty"`
}

// MarshalJSON writes the tagged classification and the derived activity
// code. UnmarshalJSON prefers the tagged form and reads the code only when
// no kind tag is present.
func (e *Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		Start:        e.Start,
		End:          e.End,
		Title:        e.Title,
		Description:  e.Description,
		ProjectCode:  e.ProjectCode,
		ActivityCode: e.ActivityCode(),
		Status:       e.Status,
		Dirty:        e.Dirty,
	}
	switch c := e.Class.(type) {
	case ProjectClass:
		out.Kind = kindProject
		out.Project = &c
	case IndirectClass:
		out.Kind = kindIndirect
		out.Indirect = &c
	case nil:
	default:
		return nil, fmt.Errorf("event: unknown classification %T", e.Class)
	}
	return json.Marshal(out)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.ID = in.ID
	e.EmployeeID = in.EmployeeID
	e.Start = in.Start
	e.End = in.End
	e.Title = in.Title
	e.Description = in.Description
	e.ProjectCode = in.ProjectCode
	e.Status = in.Status
	e.Dirty = in.Dirty
	switch in.Kind {
	case kindProject:
		if in.Project == nil {
			return fmt.Errorf("event %s: project classification missing", in.ID)
		}
		e.Class = in.Project.Normalize()
	case kindIndirect:
		if in.Indirect == nil {
			return fmt.Errorf("event %s: indirect classification missing", in.ID)
		}
		e.Class = *in.Indirect
	case "":
		// Records written by older clients carry only the derived code;
		// rebuild the classification from it.
		if in.ActivityCode == "" {
			e.Class = nil
			break
		}
		p, err := classify.Parse(in.ActivityCode)
		if err != nil {
			return fmt.Errorf("event %s: %w", in.ID, err)
		}
		cls, err := FromPath(p)
		if err != nil {
			return fmt.Errorf("event %s: %w", in.ID, err)
		}
		e.Class = cls
	default:
		return fmt.Errorf("event %s: unknown classification kind %q", in.ID, in.Kind)
	}
	return nil
}
