// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bitcoin

import "fmt"

// PointKind distinguishes output rows from spend rows in address history
type PointKind uint8

const (
	PointKindOutput PointKind = 0
	PointKindSpend  PointKind = 1
)

// historyRowSize is the wire size of one history row: kind, point hash,
// point index, height, and value
const historyRowSize = 1 + HashSize + 4 + 4 + 8

// HistoryEntry is one row of address history. Output rows carry the value
// received by the output point; spend rows carry the checksum of the
// output point they consume, so the two can be correlated client-side
type HistoryEntry struct {
	Kind   PointKind
	Point  OutPoint
	Height uint32
	Value  uint64
}

// HistoryList is the ordered history of an address, most recent first as
// served by the server
type HistoryList []HistoryEntry

// NewHistoryListFromBytes decodes a count-prefixed list of history rows
func NewHistoryListFromBytes(data []byte) (HistoryList, error) {
	r := NewReader(data)
	count := r.ReadVarInt()
	if count > uint64(r.Remaining())/historyRowSize {
		return nil, fmt.Errorf(
			"%w: implausible history row count %d",
			ErrShortPayload,
			count,
		)
	}
	list := make(HistoryList, 0, count)
	for i := uint64(0); i < count; i++ {
		var entry HistoryEntry
		kind := r.ReadUint8()
		if kind > uint8(PointKindSpend) {
			return nil, fmt.Errorf("invalid history row kind %d", kind)
		}
		entry.Kind = PointKind(kind)
		entry.Point.Hash = r.ReadHash()
		entry.Point.Index = r.ReadUint32()
		entry.Height = r.ReadUint32()
		entry.Value = r.ReadUint64()
		list = append(list, entry)
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return list, nil
}

// UnspentOutputs returns the output rows that no spend row in the list
// consumes, preserving list order
func (l HistoryList) UnspentOutputs() PointsValue {
	spent := make(map[uint64]int)
	for _, entry := range l {
		if entry.Kind == PointKindSpend {
			// A spend row's value field holds the checksum of the output
			// point being consumed
			spent[entry.Value]++
		}
	}
	var unspent PointsValue
	for _, entry := range l {
		if entry.Kind != PointKindOutput {
			continue
		}
		checksum := entry.Point.Checksum()
		if spent[checksum] > 0 {
			spent[checksum]--
			continue
		}
		unspent.Points = append(unspent.Points, PointValue{
			Point: entry.Point,
			Value: entry.Value,
		})
	}
	return unspent
}

// Balance returns the total value of the unspent outputs in the list
func (l HistoryList) Balance() uint64 {
	return l.UnspentOutputs().Value()
}
