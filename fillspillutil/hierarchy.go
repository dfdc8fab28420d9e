/*
Copyright © 2018 the FillSpill authors.
This file is part of FillSpill.

FillSpill is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

FillSpill is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with FillSpill.  If not, see <http://www.gnu.org/licenses/>.
*/

package fillspillutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/fillspill"
	"github.com/spf13/cast"
)

// hierarchyFile is the layout of a depression hierarchy file:
//
//	[[Depression]]
//	Label = 0
//	Parent = -1
//	...
//
// with one table per depression, ordered by label, starting with the
// ocean.
type hierarchyFile struct {
	Depression []fillspill.Depression
}

// LoadHierarchy reads a depression hierarchy in TOML format from r.
// Links that are not given default to fillspill.NoValue.
func LoadHierarchy(r io.Reader) (*fillspill.Hierarchy, error) {
	var raw struct {
		Depression []map[string]interface{}
	}
	if _, err := toml.DecodeReader(r, &raw); err != nil {
		return nil, fmt.Errorf("fillspill: reading hierarchy: %v", err)
	}
	var f hierarchyFile
	for i, m := range raw.Depression {
		d, err := depressionFromTable(m)
		if err != nil {
			return nil, fmt.Errorf("fillspill: reading hierarchy: depression %d: %v", i, err)
		}
		f.Depression = append(f.Depression, d)
	}
	return fillspill.NewHierarchy(f.Depression)
}

// LoadHierarchyFile reads a depression hierarchy from the TOML file at path.
func LoadHierarchyFile(path string) (*fillspill.Hierarchy, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("fillspill: opening hierarchy file: %v", err)
	}
	defer f.Close()
	return LoadHierarchy(f)
}

// WriteHierarchy writes deps in the format read by LoadHierarchy.
func WriteHierarchy(w io.Writer, deps []fillspill.Depression) error {
	return toml.NewEncoder(w).Encode(hierarchyFile{Depression: deps})
}

// depressionFromTable converts one decoded [[Depression]] table.
// Keys are matched without regard to case.
func depressionFromTable(m map[string]interface{}) (fillspill.Depression, error) {
	d := fillspill.Depression{
		Label:   fillspill.NoValue,
		Parent:  fillspill.NoValue,
		LChild:  fillspill.NoValue,
		RChild:  fillspill.NoValue,
		Geolink: fillspill.NoValue,
		ODep:    fillspill.NoValue,
		PitCell: fillspill.NoValue,
		OutCell: fillspill.NoValue,
	}
	ints := map[string]*int{
		"label":   &d.Label,
		"parent":  &d.Parent,
		"lchild":  &d.LChild,
		"rchild":  &d.RChild,
		"geolink": &d.Geolink,
		"odep":    &d.ODep,
		"pitcell": &d.PitCell,
		"outcell": &d.OutCell,
	}
	floats := map[string]*float64{
		"outelev": &d.OutElev,
		"depvol":  &d.DepVol,
	}
	for k, v := range m {
		key := strings.ToLower(k)
		var err error
		if p, ok := ints[key]; ok {
			*p, err = cast.ToIntE(v)
		} else if p, ok := floats[key]; ok {
			*p, err = cast.ToFloat64E(v)
		} else {
			switch key {
			case "oceanlinked":
				d.OceanLinked, err = cast.ToIntSliceE(v)
				if len(d.OceanLinked) == 0 {
					d.OceanLinked = nil
				}
			case "oceanparent":
				d.OceanParent, err = cast.ToBoolE(v)
			default:
				err = fmt.Errorf("unknown field")
			}
		}
		if err != nil {
			return d, fmt.Errorf("%s: %v", k, err)
		}
	}
	if d.Label == fillspill.NoValue {
		return d, fmt.Errorf("Label is missing")
	}
	return d, nil
}
