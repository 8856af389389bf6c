// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"fmt"
	"testing"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
)

func TestAttrList_Set(t *testing.T) {
	tests := []struct {
		name      string
		initial   AttrList
		value     string
		wantLen   int
		wantAttrs []Attr
	}{
		{
			name:    "empty spec is a no-op",
			value:   "",
			wantLen: 0,
		},
		{
			name:    "star alone is a no-op",
			value:   "*",
			wantLen: 0,
		},
		{
			name:    "single key",
			value:   "DBInstanceIdentifier",
			wantLen: 1,
			wantAttrs: []Attr{
				{Key: "DBInstanceIdentifier", OutputKey: "DBInstanceIdentifier", Include: true},
			},
		},
		{
			name:    "dotted key defaults output to last segment",
			value:   "Endpoint.Address",
			wantLen: 1,
			wantAttrs: []Attr{
				{Key: "Endpoint.Address", OutputKey: "Address", Include: true},
			},
		},
		{
			name:    "explicit output key and transform",
			value:   "Engine:engine:u",
			wantLen: 1,
			wantAttrs: []Attr{
				{Key: "Engine", OutputKey: "engine", Include: true, TransformSpec: "u"},
			},
		},
		{
			name:    "excluded key",
			value:   "!DBInstanceArn",
			wantLen: 1,
			wantAttrs: []Attr{
				{Key: "DBInstanceArn", OutputKey: "DBInstanceArn", Include: false},
			},
		},
		{
			name:    "root anchored key strips the dot",
			value:   ".region",
			wantLen: 1,
			wantAttrs: []Attr{
				{Key: "region", OutputKey: "region", Include: true},
			},
		},
		{
			name: "duplicate key updates existing attr",
			initial: AttrList{
				{Key: "Engine", OutputKey: "Engine", Include: true},
			},
			value:   "Engine:eng:l",
			wantLen: 1,
			wantAttrs: []Attr{
				{Key: "Engine", OutputKey: "eng", Include: true, TransformSpec: "l"},
			},
		},
		{
			name:    "multiple specs",
			value:   "DBInstanceIdentifier,Engine,DBInstanceStatus:status",
			wantLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.initial
			err := a.Set(tt.value)

			assert.NoError(t, err)
			assert.Len(t, a, tt.wantLen)

			for i, want := range tt.wantAttrs {
				assert.Equal(t, want.Key, a[i].Key, "attr[%d].Key", i)
				assert.Equal(t, want.OutputKey, a[i].OutputKey, "attr[%d].OutputKey", i)
				assert.Equal(t, want.Include, a[i].Include, "attr[%d].Include", i)
				assert.Equal(t, want.TransformSpec, a[i].TransformSpec, "attr[%d].TransformSpec", i)
			}
		})
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	a := AttrList{
		{Key: "*", TransformSpec: "U"},
		{Key: "Engine", TransformSpec: "l"},
		{Key: "DBInstanceStatus", TransformSpec: ""},
	}

	err := a.SetGlobalTransformSpec()

	assert.NoError(t, err)
	assert.Equal(t, "U,U", a[0].TransformSpec)
	assert.Equal(t, "U,l", a[1].TransformSpec)
	assert.Equal(t, "U,", a[2].TransformSpec)
}

func TestAttrList_SetGlobalTransformSpec_NoGlobal(t *testing.T) {
	a := AttrList{
		{Key: "Engine", TransformSpec: "l"},
	}

	err := a.SetGlobalTransformSpec()

	assert.NoError(t, err)
	assert.Equal(t, "l", a[0].TransformSpec)
}

func TestAttr_Transform_Case(t *testing.T) {
	tests := []struct {
		name  string
		spec  string
		input string
		want  string
	}{
		{name: "upper", spec: "u", input: "postgres", want: "POSTGRES"},
		{name: "lower", spec: "l", input: "Postgres", want: "postgres"},
		{name: "last case wins", spec: "U,l", input: "Postgres", want: "postgres"},
		{name: "no spec", spec: "", input: "postgres", want: "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Attr{TransformSpec: tt.spec}
			assert.Equal(t, tt.want, a.Transform(tt.input))
		})
	}
}

func TestAttr_Transform_Length(t *testing.T) {
	a := Attr{TransformSpec: "8"}
	assert.Equal(t, "orders-d", a.Transform("orders-db-replica-1"))

	// Negative lengths take from both ends.
	a = Attr{TransformSpec: "-8"}
	assert.Equal(t, "ord..a-1", a.Transform("orders-db-replica-1"))
}

func TestAttr_Transform_TimeAgo(t *testing.T) {
	a := Attr{TransformSpec: "T"}
	stamp := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)

	got := a.Transform(stamp)

	assert.Equal(t, humanize.Time(time.Now().Add(-2*time.Hour)), got)
}

func TestAttr_Transform_NonString(t *testing.T) {
	a := Attr{TransformSpec: "u"}

	assert.Equal(t, 5432, a.Transform(5432))
	assert.Equal(t, true, a.Transform(true))

	m := map[string]interface{}{"Address": "x"}
	assert.Equal(t, m, a.Transform(m))
}

func TestAttrList_String(t *testing.T) {
	a := AttrList{
		{Key: "Engine", OutputKey: "engine", TransformSpec: "l"},
		{Key: "DBInstanceStatus", OutputKey: "status"},
	}

	want := fmt.Sprintf("%s,%s", "Engine:engine:l", "DBInstanceStatus:status:")
	assert.Equal(t, want, a.String())
	assert.Equal(t, "list", a.Type())
}
