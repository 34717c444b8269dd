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

package safeio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseU32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr bool
	}{
		{name: "max value", input: "4294967295", want: 4294967295},
		{name: "overflow by one", input: "4294967296", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "trailing junk", input: "12x", wantErr: true},
		{name: "surrounding whitespace", input: "  42  ", want: 42},
		{name: "zero", input: "0", want: 0},
		{name: "negative rejected", input: "-1", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseU32(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeU32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", EncodeU32(0))
	assert.Equal(t, "42", EncodeU32(42))
	assert.Equal(t, "4294967295", EncodeU32(4294967295))
}

func TestAddU64Overflow(t *testing.T) {
	t.Parallel()

	_, err := AddU64(1, 2)
	assert.NoError(t, err)

	_, err = AddU64(^uint64(0), 1)
	assert.Error(t, err)
}

func TestMulU64Overflow(t *testing.T) {
	t.Parallel()

	v, err := MulU64(3, 4)
	assert.NoError(t, err)
	assert.Equal(t, uint64(12), v)

	_, err = MulU64(^uint64(0), 2)
	assert.Error(t, err)

	v, err = MulU64(0, 999)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}

func TestBoundedCopy(t *testing.T) {
	t.Parallel()

	dst := make([]byte, 4)
	n, fit := BoundedCopy(dst, "ab")
	assert.Equal(t, 2, n)
	assert.True(t, fit)

	n, fit = BoundedCopy(dst, "abcdefgh")
	assert.Equal(t, 8, n)
	assert.False(t, fit)
}

func TestBoundedConcat(t *testing.T) {
	t.Parallel()

	got, fit := BoundedConcat("foo", "bar", 10)
	assert.Equal(t, "foobar", got)
	assert.True(t, fit)

	got, fit = BoundedConcat("foo", "bar", 4)
	assert.Equal(t, "foob", got)
	assert.False(t, fit)
}
