// This file is part of NesCaster.
//
// NesCaster is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// NesCaster is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with NesCaster.  If not, see <https://www.gnu.org/licenses/>.

package savestack

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/virtual-viking/nescaster/curated"
)

// the on-disk index format. one header line, one sequence-counter line, then
// one line per entry, newest first, manual entries before auto entries:
//
//	nescaster savestack v1
//	seq,12
//	manual,0c3a91fe-000012,12,1756100000000000000,3c9d2f01,5400000000000,"Blaster Master",""
//	auto,0c3a91fe-000009,9,1756099400000000000,91b22a07,4800000000000,"Blaster Master","area 2"
//
// quoted fields are encoded with strconv.Quote and may contain commas.
const (
	indexHeader = "nescaster savestack v1"
	fieldSep    = ","
	entrySep    = "\n"
)

const (
	stackFieldManual = "manual"
	stackFieldAuto   = "auto"
)

// IndexError is the pattern for an index that cannot be decoded.
const IndexError = "savestack: index: %v"

func encodeIndex(seq uint64, manual []Entry, auto []Entry) []byte {
	s := strings.Builder{}

	s.WriteString(indexHeader)
	s.WriteString(entrySep)
	s.WriteString(fmt.Sprintf("seq%s%d%s", fieldSep, seq, entrySep))

	enc := func(stack string, entries []Entry) {
		for _, e := range entries {
			s.WriteString(fmt.Sprintf("%s,%s,%d,%d,%08x,%d,%s,%s%s",
				stack, e.ID, e.Seq, e.Created.UnixNano(), e.crc,
				int64(e.Meta.PlayTime),
				strconv.Quote(e.Meta.Name), strconv.Quote(e.Meta.LevelHint),
				entrySep))
		}
	}
	enc(stackFieldManual, manual)
	enc(stackFieldAuto, auto)

	return []byte(s.String())
}

func decodeIndex(data []byte) (seq uint64, manual []Entry, auto []Entry, err error) {
	lines := strings.Split(string(data), entrySep)

	if len(lines) < 2 || lines[0] != indexHeader {
		return 0, nil, nil, curated.Errorf(IndexError, "unrecognised header")
	}

	f := strings.SplitN(lines[1], fieldSep, 2)
	if len(f) != 2 || f[0] != "seq" {
		return 0, nil, nil, curated.Errorf(IndexError, "missing sequence counter")
	}
	seq, err = strconv.ParseUint(f[1], 10, 64)
	if err != nil {
		return 0, nil, nil, curated.Errorf(IndexError, err)
	}

	for _, line := range lines[2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		e, stack, err := decodeEntry(line)
		if err != nil {
			return 0, nil, nil, err
		}

		switch stack {
		case stackFieldManual:
			manual = append(manual, e)
		case stackFieldAuto:
			e.Meta.AutoSave = true
			auto = append(auto, e)
		default:
			return 0, nil, nil, curated.Errorf(IndexError, fmt.Sprintf("unrecognised stack (%s)", stack))
		}
	}

	return seq, manual, auto, nil
}

func decodeEntry(line string) (Entry, string, error) {
	e := Entry{}

	// the first six fields never contain the field separator
	f := strings.SplitN(line, fieldSep, 7)
	if len(f) != 7 {
		return e, "", curated.Errorf(IndexError, "short entry record")
	}

	stack := f[0]
	e.ID = f[1]

	var err error

	e.Seq, err = strconv.ParseUint(f[2], 10, 64)
	if err != nil {
		return e, "", curated.Errorf(IndexError, err)
	}

	ns, err := strconv.ParseInt(f[3], 10, 64)
	if err != nil {
		return e, "", curated.Errorf(IndexError, err)
	}
	e.Created = time.Unix(0, ns)

	crc, err := strconv.ParseUint(f[4], 16, 32)
	if err != nil {
		return e, "", curated.Errorf(IndexError, err)
	}
	e.crc = uint32(crc)

	pt, err := strconv.ParseInt(f[5], 10, 64)
	if err != nil {
		return e, "", curated.Errorf(IndexError, err)
	}
	e.Meta.PlayTime = time.Duration(pt)

	// the remainder is two quoted fields: name and level hint
	rem := f[6]

	q, err := strconv.QuotedPrefix(rem)
	if err != nil {
		return e, "", curated.Errorf(IndexError, "bad name field")
	}
	e.Meta.Name, err = strconv.Unquote(q)
	if err != nil {
		return e, "", curated.Errorf(IndexError, "bad name field")
	}

	rem = strings.TrimPrefix(strings.TrimPrefix(rem, q), fieldSep)
	e.Meta.LevelHint, err = strconv.Unquote(rem)
	if err != nil {
		return e, "", curated.Errorf(IndexError, "bad level hint field")
	}

	return e, stack, nil
}
