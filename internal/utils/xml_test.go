package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestBuildXMLScalars(t *testing.T) {
	assert.Equal(t, "", BuildXML(decode(t, `null`)))
	assert.Equal(t, "true", BuildXML(decode(t, `true`)))
	assert.Equal(t, "42", BuildXML(decode(t, `42`)))
	assert.Equal(t, "1.5", BuildXML(decode(t, `1.5`)))
	assert.Equal(t, "hello", BuildXML(decode(t, `"hello"`)))
}

func TestBuildXMLArray(t *testing.T) {
	got := BuildXML(decode(t, `["a", "b"]`))
	assert.Equal(t, "<array_elem>a</array_elem><array_elem>b</array_elem>", got)
}

func TestBuildXMLObject(t *testing.T) {
	got := BuildXML(decode(t, `{"title": "First Channel", "entries": []}`))
	assert.Equal(t, "<object><entries></entries><title>First Channel</title></object>", got)
}

func TestBuildXMLNested(t *testing.T) {
	got := BuildXML(decode(t, `{"entries": [{"name": "one"}]}`))
	assert.Equal(t,
		"<object><entries><array_elem><object><name>one</name></object></array_elem></entries></object>",
		got)
}
