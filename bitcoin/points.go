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

import "sort"

// PointValue pairs an output point with the value it carries
type PointValue struct {
	Point OutPoint
	Value uint64
}

// PointsValue is a set of output points and the total value they carry
type PointsValue struct {
	Points []PointValue
}

// Value returns the total value of the set
func (p PointsValue) Value() uint64 {
	var total uint64
	for _, point := range p.Points {
		total += point.Value
	}
	return total
}

// SelectAlgorithm chooses how unspent outputs are gathered to cover a
// target value
type SelectAlgorithm uint8

const (
	// SelectGreedy prefers the smallest single output that covers the
	// target on its own, falling back to accumulating outputs from the
	// largest down until the target is reached
	SelectGreedy SelectAlgorithm = iota
	// SelectIndividual returns every output that covers the target on its
	// own
	SelectIndividual
)

// SelectOutputs picks outputs from the unspent set whose combined value
// covers the target. The result is empty when the target cannot be met
func SelectOutputs(
	unspent PointsValue,
	target uint64,
	algorithm SelectAlgorithm,
) PointsValue {
	switch algorithm {
	case SelectIndividual:
		return selectIndividual(unspent, target)
	default:
		return selectGreedy(unspent, target)
	}
}

func selectGreedy(unspent PointsValue, target uint64) PointsValue {
	var smallest *PointValue
	for i := range unspent.Points {
		point := unspent.Points[i]
		if point.Value < target {
			continue
		}
		if smallest == nil || point.Value < smallest.Value {
			smallest = &unspent.Points[i]
		}
	}
	if smallest != nil {
		return PointsValue{Points: []PointValue{*smallest}}
	}
	// No single output suffices, so take the largest outputs first
	sorted := make([]PointValue, len(unspent.Points))
	copy(sorted, unspent.Points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	var selected PointsValue
	var total uint64
	for _, point := range sorted {
		selected.Points = append(selected.Points, point)
		total += point.Value
		if total >= target {
			return selected
		}
	}
	return PointsValue{}
}

func selectIndividual(unspent PointsValue, target uint64) PointsValue {
	var selected PointsValue
	for _, point := range unspent.Points {
		if point.Value >= target {
			selected.Points = append(selected.Points, point)
		}
	}
	return selected
}
