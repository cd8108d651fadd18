package classify

import (
	"errors"
	"testing"
)

func TestDeriveIndirectMeeting(t *testing.T) {
	code, err := Derive(Path{Top: TopIndirect, Sub: "純間接", Detail: "会議"})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if code != "ZJM0" {
		t.Fatalf("code = %q, want ZJM0", code)
	}
}

func TestDerivePurchaseSuffix(t *testing.T) {
	code, err := Derive(Path{Top: TopProject, Sub: "購入品", Detail: "機器手配", PurchaseOption: 'C'})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if code != "P112" {
		t.Fatalf("code = %q, want P112", code)
	}
}

func TestDeriveTables(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{Path{Top: TopProject, Sub: "計画", Detail: "構想検討"}, "PA00"},
		{Path{Top: TopProject, Sub: "設計", Detail: "詳細図"}, "D200"},
		{Path{Top: TopProject, Sub: "会議", Detail: "客先打合せ"}, "M200"},
		{Path{Top: TopProject, Sub: "その他", Detail: "その他"}, "O900"},
		{Path{Top: TopProject, Sub: "購入品", Detail: "材料手配", PurchaseOption: '0'}, "P200"},
		{Path{Top: TopProject, Sub: "購入品", Detail: "外注手配", PurchaseOption: 'G'}, "P316"},
		{Path{Top: TopIndirect, Sub: "管理業務", Detail: "勤怠管理"}, "ZMK0"},
		{Path{Top: TopIndirect, Sub: "教育", Detail: "受講"}, "ZKJ0"},
	}
	for _, tt := range tests {
		code, err := Derive(tt.path)
		if err != nil {
			t.Fatalf("Derive(%+v): %v", tt.path, err)
		}
		if code != tt.want {
			t.Fatalf("Derive(%+v) = %q, want %q", tt.path, code, tt.want)
		}
		if len(code) != 4 {
			t.Fatalf("code %q is not 4 characters", code)
		}
	}
}

func TestDeriveRejectsUnknownTabs(t *testing.T) {
	tests := []struct {
		path Path
		want error
	}{
		{Path{Top: "weekly", Sub: "計画", Detail: "見積"}, ErrUnknownTop},
		{Path{Top: TopProject, Sub: "営業", Detail: "見積"}, ErrUnknownSub},
		{Path{Top: TopProject, Sub: "設計", Detail: "会議"}, ErrUnknownDetail},
		{Path{Top: TopIndirect, Sub: "純間接", Detail: "検図"}, ErrUnknownDetail},
		{Path{Top: TopProject, Sub: "購入品", Detail: "機器手配", PurchaseOption: 'Z'}, ErrUnknownOption},
	}
	for _, tt := range tests {
		if _, err := Derive(tt.path); !errors.Is(err, tt.want) {
			t.Fatalf("Derive(%+v) error = %v, want %v", tt.path, err, tt.want)
		}
	}
}

func TestPurchaseOptionsEnumeration(t *testing.T) {
	if len(PurchaseOptions) != 17 {
		t.Fatalf("want 17 purchase options, got %d", len(PurchaseOptions))
	}
	seen := map[string]bool{}
	for i, opt := range PurchaseOptions {
		want := byte("0123456789ABCDEFG"[i])
		if opt.Key != want {
			t.Fatalf("option %d key = %q, want %q", i, opt.Key, want)
		}
		if seen[opt.Suffix] {
			t.Fatalf("duplicate suffix %q", opt.Suffix)
		}
		seen[opt.Suffix] = true
	}
	if s, ok := PurchaseSuffix('C'); !ok || s != "12" {
		t.Fatalf("PurchaseSuffix('C') = %q, %v", s, ok)
	}
}

func TestParseRoundTrip(t *testing.T) {
	paths := []Path{
		{Top: TopProject, Sub: "計画", Detail: "見積"},
		{Top: TopProject, Sub: "設計", Detail: "検図"},
		{Top: TopProject, Sub: "購入品", Detail: "機器手配", PurchaseOption: 'C'},
		{Top: TopProject, Sub: "購入品", Detail: "材料手配", PurchaseOption: '0'},
		{Top: TopIndirect, Sub: "純間接", Detail: "会議"},
		{Top: TopIndirect, Sub: "教育", Detail: "講師"},
	}
	for _, p := range paths {
		code, err := Derive(p)
		if err != nil {
			t.Fatalf("Derive(%+v): %v", p, err)
		}
		back, err := Parse(code)
		if err != nil {
			t.Fatalf("Parse(%q): %v", code, err)
		}
		if back != p {
			t.Fatalf("Parse(Derive(%+v)) = %+v", p, back)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, code := range []string{"", "P1", "XX00", "Z999", "PA12"} {
		if _, err := Parse(code); err == nil {
			t.Fatalf("Parse(%q) should fail", code)
		}
	}
}

func TestTabEnumeration(t *testing.T) {
	if got := SubTabs(TopProject); len(got) != 5 {
		t.Fatalf("project sub tabs = %v", got)
	}
	if got := SubTabs(TopIndirect); len(got) != 3 {
		t.Fatalf("indirect sub tabs = %v", got)
	}
	if got := Details(TopProject, "設計"); len(got) != 5 || got[1] != "詳細図" {
		t.Fatalf("設計 details = %v", got)
	}
	if got := Details(TopIndirect, "存在しない"); got != nil {
		t.Fatalf("unknown sub should list nil, got %v", got)
	}
}
