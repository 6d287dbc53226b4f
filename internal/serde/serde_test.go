package serde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `json:"name"`
	Count  int    `json:"count,omitempty"`
	Hidden string `json:"-"`
}

func TestMarshalJsonReturnsIndependentBuffers(t *testing.T) {
	first, err := MarshalJson(sample{Name: "first", Count: 1})
	require.NoError(t, err)

	second, err := MarshalJson(sample{Name: "second"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"first","count":1}`, string(first))
	assert.JSONEq(t, `{"name":"second"}`, string(second))
}

func TestUnmarshalJsonRejectsUnknownFields(t *testing.T) {
	var s sample
	require.NoError(t, UnmarshalJson([]byte(`{"name":"ok","count":3}`), &s))
	assert.Equal(t, sample{Name: "ok", Count: 3}, s)

	var bad sample
	assert.Error(t, UnmarshalJson([]byte(`{"name":"ok","extra":true}`), &bad))
}
