/*
 * tablinum: content-addressed document archive engine
 * Copyright © 2026 The Tablinum Authors
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package jobid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafe(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSafe("a"))
	assert.True(t, IsSafe("job-0001"))
	assert.False(t, IsSafe("a/b"))
	assert.False(t, IsSafe(`a\b`))
	assert.False(t, IsSafe(".."))
	assert.False(t, IsSafe("a..b"))
	assert.False(t, IsSafe("c:foo"))
	assert.False(t, IsSafe(""))
	assert.False(t, IsSafe("has\x01control"))
}
