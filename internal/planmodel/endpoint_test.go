package planmodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_String(t *testing.T) {
	plain := Endpoint{Host: "10.0.0.1", Port: 31010}
	assert.Equal(t, "10.0.0.1:31010", plain.String())

	tagged := Endpoint{Host: "10.0.0.1", Port: 31010, FabricTag: "rack-a"}
	assert.Equal(t, "10.0.0.1:31010[rack-a]", tagged.String())
}

func TestEndpoint_MarshalUnmarshalText_RoundTrips(t *testing.T) {
	for _, e := range []Endpoint{
		{Host: "10.0.0.1", Port: 31010},
		{Host: "10.0.0.1", Port: 31010, FabricTag: "rack-a"},
	} {
		text, err := e.MarshalText()
		require.NoError(t, err)

		var got Endpoint
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, e, got)
	}
}

func TestEndpoint_AsMapKey_MarshalsAsJSONObjectWithStringKeys(t *testing.T) {
	a := Endpoint{Host: "a", Port: 1}
	b := Endpoint{Host: "b", Port: 2, FabricTag: "rack-a"}
	affinity := map[Endpoint]float64{a: 1.5, b: 2.5}

	raw, err := json.Marshal(affinity)
	require.NoError(t, err)

	var decoded map[Endpoint]float64
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, affinity, decoded)
}

func TestNewEndpointList_PreservesOrderDropsDuplicates(t *testing.T) {
	e1 := Endpoint{Host: "a", Port: 1}
	e2 := Endpoint{Host: "b", Port: 2}
	list := NewEndpointList([]Endpoint{e1, e2, e1})

	assert.Equal(t, 2, list.Len())
	assert.Equal(t, []Endpoint{e1, e2}, list.Items())
	assert.Equal(t, 0, list.IndexOf(e1))
	assert.Equal(t, 1, list.IndexOf(e2))
}

func TestEndpointList_ContainsAndIndexOf_Absent(t *testing.T) {
	list := NewEndpointList([]Endpoint{{Host: "a", Port: 1}})
	absent := Endpoint{Host: "z", Port: 9}

	assert.False(t, list.Contains(absent))
	assert.Equal(t, -1, list.IndexOf(absent))
}

func TestEndpointList_NilSafe(t *testing.T) {
	var list *EndpointList

	assert.Equal(t, 0, list.Len())
	assert.Nil(t, list.Items())
	assert.False(t, list.Contains(Endpoint{Host: "a", Port: 1}))
	assert.Equal(t, -1, list.IndexOf(Endpoint{Host: "a", Port: 1}))
}
