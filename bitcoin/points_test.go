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

package bitcoin_test

import (
	"testing"

	"github.com/blinklabs-io/gobelisk/bitcoin"
	test "github.com/blinklabs-io/gobelisk/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnspent() bitcoin.PointsValue {
	hash := test.DecodeHash(
		"0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b",
	)
	return bitcoin.PointsValue{
		Points: []bitcoin.PointValue{
			{Point: bitcoin.OutPoint{Hash: hash, Index: 0}, Value: 500},
			{Point: bitcoin.OutPoint{Hash: hash, Index: 1}, Value: 2000},
			{Point: bitcoin.OutPoint{Hash: hash, Index: 2}, Value: 1500},
			{Point: bitcoin.OutPoint{Hash: hash, Index: 3}, Value: 100},
		},
	}
}

func TestPointsValueTotal(t *testing.T) {
	assert.Equal(t, uint64(4100), testUnspent().Value())
	assert.Equal(t, uint64(0), bitcoin.PointsValue{}.Value())
}

func TestSelectGreedySingleOutput(t *testing.T) {
	// The smallest single output covering the target wins
	selected := bitcoin.SelectOutputs(testUnspent(), 1500, bitcoin.SelectGreedy)
	require.Len(t, selected.Points, 1)
	assert.Equal(t, uint64(1500), selected.Points[0].Value)
	assert.Equal(t, uint32(2), selected.Points[0].Point.Index)
}

func TestSelectGreedyAccumulate(t *testing.T) {
	// No single output covers the target, so the largest outputs are taken
	// until it is reached
	selected := bitcoin.SelectOutputs(testUnspent(), 3600, bitcoin.SelectGreedy)
	require.Len(t, selected.Points, 3)
	assert.Equal(t, uint64(2000), selected.Points[0].Value)
	assert.Equal(t, uint64(1500), selected.Points[1].Value)
	assert.Equal(t, uint64(500), selected.Points[2].Value)
	assert.GreaterOrEqual(t, selected.Value(), uint64(3600))
}

func TestSelectGreedyInsufficient(t *testing.T) {
	selected := bitcoin.SelectOutputs(testUnspent(), 5000, bitcoin.SelectGreedy)
	assert.Len(t, selected.Points, 0)
}

func TestSelectIndividual(t *testing.T) {
	selected := bitcoin.SelectOutputs(
		testUnspent(),
		1500,
		bitcoin.SelectIndividual,
	)
	require.Len(t, selected.Points, 2)
	// Candidates keep their original order
	assert.Equal(t, uint64(2000), selected.Points[0].Value)
	assert.Equal(t, uint64(1500), selected.Points[1].Value)
}

func TestSelectFromEmptySet(t *testing.T) {
	selected := bitcoin.SelectOutputs(
		bitcoin.PointsValue{},
		1,
		bitcoin.SelectGreedy,
	)
	assert.Len(t, selected.Points, 0)
}
