/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package importinfo

import "testing"

func TestNewStripsStar(t *testing.T) {
	info := New("os", []string{"path", "*"}, 0, false, false, false)
	if !info.Star {
		t.Error("Expected star import")
	}
	if info.Names["*"] {
		t.Error("Star must not be stored as a name")
	}
	if !info.Names["path"] {
		t.Error("Expected 'path' in names")
	}
}

func TestOptional(t *testing.T) {
	cases := []struct {
		name     string
		info     ImportInfo
		optional bool
		global   bool
	}{
		{"module level", New("os", nil, 0, false, false, false), false, true},
		{"in function", New("os", nil, 0, true, false, false), true, false},
		{"in conditional", New("os", nil, 0, false, true, false), true, true},
		{"in try", New("os", nil, 0, false, false, true), true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Optional(); got != tc.optional {
				t.Errorf("Optional() = %v, want %v", got, tc.optional)
			}
			if got := tc.info.Global(); got != tc.global {
				t.Errorf("Global() = %v, want %v", got, tc.global)
			}
		})
	}
}

func TestMergeDependencyInfo(t *testing.T) {
	optional := DependencyInfo{Optional: true}
	required := DependencyInfo{Optional: false, Global: true}

	merged := MergeDependencyInfo(optional, required)
	if merged.Optional {
		t.Error("One required import makes the edge required")
	}
	if !merged.Global {
		t.Error("Global accumulates")
	}

	merged = MergeDependencyInfo(optional, DependencyInfo{Optional: true, InFromlist: true})
	if !merged.Optional {
		t.Error("All-optional imports keep the edge optional")
	}
	if !merged.InFromlist {
		t.Error("InFromlist accumulates")
	}
}

func TestMergeKeepsFirstRename(t *testing.T) {
	a := DependencyInfo{ImportedAs: "np"}
	b := DependencyInfo{ImportedAs: "numpy_alias"}
	if got := MergeDependencyInfo(a, b).ImportedAs; got != "np" {
		t.Errorf("Expected first rename to win, got %q", got)
	}
	if got := MergeDependencyInfo(DependencyInfo{}, b).ImportedAs; got != "numpy_alias" {
		t.Errorf("Expected second rename when first is empty, got %q", got)
	}
}
