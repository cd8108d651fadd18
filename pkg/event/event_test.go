package event

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tableflip.dev/shiwake/pkg/classify"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.May, 12, hour, min, 0, 0, time.Local)
}

func TestNewID(t *testing.T) {
	e := New("E0123", at(9, 0), at(9, 30), IndirectClass{Sub: "純間接", Detail: "会議"})
	if e.ID != "E0123-202505120900" {
		t.Fatalf("id = %q", e.ID)
	}
	if e.Status != StatusInProgress {
		t.Fatalf("new event status = %q", e.Status)
	}
}

func TestActivityCodeIsDerived(t *testing.T) {
	e := New("E0123", at(9, 0), at(10, 0), IndirectClass{Sub: "純間接", Detail: "会議"})
	if got := e.ActivityCode(); got != "ZJM0" {
		t.Fatalf("code = %q, want ZJM0", got)
	}

	e.SetClass(ProjectClass{Sub: "設計", Detail: "詳細図"})
	if got := e.ActivityCode(); got != "D200" {
		t.Fatalf("code after switch = %q, want D200", got)
	}
}

func TestSwitchingToIndirectClearsProjectFields(t *testing.T) {
	e := New("E0123", at(9, 0), at(10, 0), ProjectClass{
		Sub:       "設計",
		Detail:    "詳細図",
		Equipment: EquipmentRef{Number: "EQ-100", Name: "攪拌機"},
	}.Normalize())
	e.ProjectCode = "PJ-2201"

	e.SetClass(IndirectClass{Sub: "教育", Detail: "受講"})

	if e.ProjectCode != "" {
		t.Fatalf("project code should be cleared, got %q", e.ProjectCode)
	}
	if _, ok := e.Class.(IndirectClass); !ok {
		t.Fatalf("classification = %T", e.Class)
	}
	// The variant itself carries no equipment, so nothing stale can leak
	// into a rendered or persisted form.
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "EQ-100") {
		t.Fatalf("stale equipment survived: %s", data)
	}
}

func TestEquipmentTagFollowsBranch(t *testing.T) {
	c := ProjectClass{Sub: "設計", Detail: "詳細図", Equipment: EquipmentRef{Number: "EQ-1"}}.Normalize()
	if c.Equipment.Kind != KindEquipment {
		t.Fatalf("design branch kind = %q", c.Equipment.Kind)
	}

	c = ProjectClass{Sub: "購入品", Detail: "機器手配", PurchaseOption: 'C',
		Equipment: EquipmentRef{Number: "PO-88"}}.Normalize()
	if c.Equipment.Kind != KindPurchaseItem {
		t.Fatalf("purchase branch kind = %q", c.Equipment.Kind)
	}
}

func TestFromPath(t *testing.T) {
	cl, err := FromPath(classify.Path{Top: classify.TopProject, Sub: "購入品", Detail: "機器手配", PurchaseOption: 'C'})
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	code, err := cl.ActivityCode()
	if err != nil || code != "P112" {
		t.Fatalf("code = %q, %v", code, err)
	}

	if _, err := FromPath(classify.Path{Top: classify.TopProject, Sub: "営業"}); err == nil {
		t.Fatalf("invalid path should not build a classification")
	}
}

func TestJSONRoundTripKeepsVariant(t *testing.T) {
	e := New("E0123", at(13, 0), at(14, 30), ProjectClass{
		Sub: "購入品", Detail: "機器手配", PurchaseOption: 'C',
		Equipment: EquipmentRef{Number: "PO-88", Name: "減速機"},
	}.Normalize())
	e.ProjectCode = "PJ-2207"
	e.Dirty = true

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"activityCode":"P112"`) {
		t.Fatalf("derived code missing from wire form: %s", data)
	}

	var back Event
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pc, ok := back.Class.(ProjectClass)
	if !ok {
		t.Fatalf("classification = %T", back.Class)
	}
	if pc.Equipment.Kind != KindPurchaseItem || pc.Equipment.Number != "PO-88" {
		t.Fatalf("equipment = %+v", pc.Equipment)
	}
	if back.ActivityCode() != "P112" || !back.Dirty {
		t.Fatalf("round trip lost fields: code=%q dirty=%v", back.ActivityCode(), back.Dirty)
	}
}

func TestUnmarshalRebuildsClassFromCode(t *testing.T) {
	// Older clients send only the derived code, no kind tag.
	raw := `{"id":"legacy-1","employeeId":"E0123",
		"startTime":"2025-05-12T09:00:00+09:00","endTime":"2025-05-12T10:00:00+09:00",
		"activityCode":"P112"}`

	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pc, ok := e.Class.(ProjectClass)
	if !ok {
		t.Fatalf("classification = %T, want ProjectClass", e.Class)
	}
	if pc.Sub != "購入品" || pc.Detail != "機器手配" || pc.PurchaseOption != 'C' {
		t.Fatalf("rebuilt class = %+v", pc)
	}
	if e.ActivityCode() != "P112" {
		t.Fatalf("code = %q, want P112", e.ActivityCode())
	}

	raw = `{"id":"legacy-2","activityCode":"XXXX"}`
	if err := json.Unmarshal([]byte(raw), &e); err == nil {
		t.Fatal("expected error for an unknown code")
	}
}

func TestColorFollowsProjectCode(t *testing.T) {
	e := New("E0123", at(9, 0), at(9, 30), nil)
	e.ProjectCode = "PJ-2207"
	if e.Color() != Palette[7] {
		t.Fatalf("color = %q, want palette[7]", e.Color())
	}
	e.ProjectCode = ""
	if e.Color() == Palette[7] {
		t.Fatalf("indirect events should not use the project palette")
	}
}

func TestStatusCycle(t *testing.T) {
	s := StatusInProgress
	for i, want := range []Status{StatusCompleted, StatusCancelled, StatusInProgress} {
		s = s.Cycle()
		if s != want {
			t.Fatalf("cycle %d = %q, want %q", i, s, want)
		}
	}
}
