// Package classify holds the activity classification tab tree and derives
// the 4-character activity code from a selected tab path.
//
// Codes have two shapes:
//
//	project top tab:  prefix(1) + type(1) + suffix(2)    e.g. "D200", "P112"
//	indirect top tab: 'Z' + branch(1) + type(1) + '0'    e.g. "ZJM0"
//
// The suffix is the literal "00" everywhere except the 購入品 domain, where
// the user picks one of seventeen enumerated options (0–9 then A–G, mapped
// to "00".."16").
package classify

import (
	"errors"
	"fmt"
)

// Top identifies a top-level tab.
type Top string

const (
	TopProject  Top = "project"
	TopIndirect Top = "indirect"
)

// Path is an ordered tab selection: top tab, second-level tab, detail tab,
// plus the purchase option key when the second-level tab is 購入品.
type Path struct {
	Top            Top
	Sub            string
	Detail         string
	PurchaseOption byte
}

var (
	ErrUnknownTop    = errors.New("classify: unknown top tab")
	ErrUnknownSub    = errors.New("classify: unknown sub tab")
	ErrUnknownDetail = errors.New("classify: unknown detail tab")
	ErrUnknownOption = errors.New("classify: unknown purchase option")
)

type detailEntry struct {
	Label string
	Code  byte
}

type projectDomain struct {
	Sub     string
	Prefix  byte
	Details []detailEntry
}

type indirectBranch struct {
	Sub     string
	Branch  byte
	Details []detailEntry
}

// The project-side domain tables. Each second-level tab fixes the domain
// prefix, each detail tab fixes the type character. 計画 uses alphabetic
// type codes so its rows never collide with 購入品 rows under the shared
// P prefix.
var projectDomains = []projectDomain{
	{
		Sub:    "計画",
		Prefix: 'P',
		Details: []detailEntry{
			{"構想検討", 'A'},
			{"仕様検討", 'B'},
			{"見積", 'C'},
			{"日程計画", 'D'},
		},
	},
	{
		Sub:    "設計",
		Prefix: 'D',
		Details: []detailEntry{
			{"計画図", '1'},
			{"詳細図", '2'},
			{"組立図", '3'},
			{"部品図", '4'},
			{"検図", '5'},
		},
	},
	{
		Sub:    "会議",
		Prefix: 'M',
		Details: []detailEntry{
			{"社内打合せ", '1'},
			{"客先打合せ", '2'},
			{"仕入先打合せ", '3'},
		},
	},
	{
		Sub:    "購入品",
		Prefix: 'P',
		Details: []detailEntry{
			{"機器手配", '1'},
			{"材料手配", '2'},
			{"外注手配", '3'},
		},
	},
	{
		Sub:    "その他",
		Prefix: 'O',
		Details: []detailEntry{
			{"出張", '1'},
			{"資料作成", '2'},
			{"現地立会", '3'},
			{"その他", '9'},
		},
	},
}

// The indirect-side branch tables. Codes always start with 'Z'; the branch
// character comes from the second-level tab.
var indirectBranches = []indirectBranch{
	{
		Sub:    "純間接",
		Branch: 'J',
		Details: []detailEntry{
			{"会議", 'M'},
			{"朝礼", 'A'},
			{"資料整理", 'S'},
			{"電話対応", 'T'},
			{"清掃", 'C'},
		},
	},
	{
		Sub:    "管理業務",
		Branch: 'M',
		Details: []detailEntry{
			{"勤怠管理", 'K'},
			{"安全管理", 'A'},
			{"予算管理", 'Y'},
			{"進捗管理", 'S'},
		},
	},
	{
		Sub:    "教育",
		Branch: 'K',
		Details: []detailEntry{
			{"受講", 'J'},
			{"講師", 'L'},
			{"自己学習", 'S'},
		},
	},
}

// PurchaseSub is the second-level tab whose suffix is user-selectable.
const PurchaseSub = "購入品"

// PurchaseOption is one selectable suffix for the 購入品 domain.
type PurchaseOption struct {
	Key    byte
	Suffix string
	Label  string
}

// PurchaseOptions enumerates the seventeen suffix options, 0–9 then A–G.
var PurchaseOptions = []PurchaseOption{
	{'0', "00", "本体"},
	{'1', "01", "架台"},
	{'2', "02", "配管"},
	{'3', "03", "配線"},
	{'4', "04", "計器"},
	{'5', "05", "弁類"},
	{'6', "06", "ポンプ"},
	{'7', "07", "モーター"},
	{'8', "08", "制御盤"},
	{'9', "09", "センサー"},
	{'A', "10", "安全装置"},
	{'B', "11", "予備品"},
	{'C', "12", "消耗品"},
	{'D', "13", "治具"},
	{'E', "14", "工具"},
	{'F', "15", "梱包材"},
	{'G', "16", "その他"},
}

// Derive computes the activity code for the given path. It is the only way
// an activity code comes into existence.
func Derive(p Path) (string, error) {
	switch p.Top {
	case TopProject:
		return deriveProject(p)
	case TopIndirect:
		return deriveIndirect(p)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTop, p.Top)
	}
}

func deriveProject(p Path) (string, error) {
	dom, ok := projectDomainFor(p.Sub)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSub, p.Sub)
	}
	typ, ok := detailCode(dom.Details, p.Detail)
	if !ok {
		return "", fmt.Errorf("%w: %q under %q", ErrUnknownDetail, p.Detail, p.Sub)
	}
	suffix := "00"
	if p.Sub == PurchaseSub {
		s, ok := PurchaseSuffix(p.PurchaseOption)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownOption, string(p.PurchaseOption))
		}
		suffix = s
	}
	return string(dom.Prefix) + string(typ) + suffix, nil
}

func deriveIndirect(p Path) (string, error) {
	br, ok := indirectBranchFor(p.Sub)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSub, p.Sub)
	}
	typ, ok := detailCode(br.Details, p.Detail)
	if !ok {
		return "", fmt.Errorf("%w: %q under %q", ErrUnknownDetail, p.Detail, p.Sub)
	}
	return "Z" + string(br.Branch) + string(typ) + "0", nil
}

// PurchaseSuffix resolves an option key (0–9, A–G) to its 2-character
// suffix.
func PurchaseSuffix(key byte) (string, bool) {
	for _, opt := range PurchaseOptions {
		if opt.Key == key {
			return opt.Suffix, true
		}
	}
	return "", false
}

// SubTabs lists the second-level tabs under a top tab, in display order.
func SubTabs(top Top) []string {
	switch top {
	case TopProject:
		subs := make([]string, len(projectDomains))
		for i, d := range projectDomains {
			subs[i] = d.Sub
		}
		return subs
	case TopIndirect:
		subs := make([]string, len(indirectBranches))
		for i, b := range indirectBranches {
			subs[i] = b.Sub
		}
		return subs
	}
	return nil
}

// Details lists the detail tabs under (top, sub), in display order.
func Details(top Top, sub string) []string {
	var entries []detailEntry
	switch top {
	case TopProject:
		if dom, ok := projectDomainFor(sub); ok {
			entries = dom.Details
		}
	case TopIndirect:
		if br, ok := indirectBranchFor(sub); ok {
			entries = br.Details
		}
	}
	if entries == nil {
		return nil
	}
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	return labels
}

// Valid reports whether the path resolves to a code.
func Valid(p Path) bool {
	_, err := Derive(p)
	return err == nil
}

// Parse recovers a tab path from a previously derived code. Codes written
// by older clients carry no path, so remote records are reconstructed this
// way on load. Ambiguity is impossible: prefixes and type characters are
// unique per shape.
func Parse(code string) (Path, error) {
	if len(code) != 4 {
		return Path{}, fmt.Errorf("classify: code %q is not 4 characters", code)
	}
	if code[0] == 'Z' {
		for _, br := range indirectBranches {
			if br.Branch != code[1] {
				continue
			}
			for _, d := range br.Details {
				if d.Code == code[2] {
					return Path{Top: TopIndirect, Sub: br.Sub, Detail: d.Label}, nil
				}
			}
		}
		return Path{}, fmt.Errorf("classify: no indirect branch matches %q", code)
	}
	for _, dom := range projectDomains {
		if dom.Prefix != code[0] {
			continue
		}
		for _, d := range dom.Details {
			if d.Code != code[1] {
				continue
			}
			p := Path{Top: TopProject, Sub: dom.Sub, Detail: d.Label}
			if dom.Sub == PurchaseSub {
				opt, ok := purchaseOptionForSuffix(code[2:])
				if !ok {
					return Path{}, fmt.Errorf("classify: no purchase option matches suffix %q", code[2:])
				}
				p.PurchaseOption = opt.Key
				return p, nil
			}
			if code[2:] == "00" {
				return p, nil
			}
		}
	}
	return Path{}, fmt.Errorf("classify: no domain matches %q", code)
}

func projectDomainFor(sub string) (projectDomain, bool) {
	for _, d := range projectDomains {
		if d.Sub == sub {
			return d, true
		}
	}
	return projectDomain{}, false
}

func indirectBranchFor(sub string) (indirectBranch, bool) {
	for _, b := range indirectBranches {
		if b.Sub == sub {
			return b, true
		}
	}
	return indirectBranch{}, false
}

func purchaseOptionForSuffix(suffix string) (PurchaseOption, bool) {
	for _, opt := range PurchaseOptions {
		if opt.Suffix == suffix {
			return opt, true
		}
	}
	return PurchaseOption{}, false
}

func detailCode(entries []detailEntry, label string) (byte, bool) {
	for _, e := range entries {
		if e.Label == label {
			return e.Code, true
		}
	}
	return 0, false
}
