package streaming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Envelope(t *testing.T) {
	data, err := Marshal(TypeHello, HelloPayload{Demo: "globe", Demos: []string{"globe"}, Rate: 10})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"hello","payload":{"demo":"globe","demos":["globe"],"rate":10}}`, string(data))

	var hello HelloPayload
	typ, err := Decode(data, &hello)
	require.NoError(t, err)
	assert.Equal(t, TypeHello, typ)
	assert.Equal(t, "globe", hello.Demo)
}

func TestMarshal_Unsupported(t *testing.T) {
	_, err := Marshal(TypeFrame, make(chan int))
	assert.Error(t, err)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("{"), nil)
	assert.Error(t, err)

	var bye ByePayload
	typ, err := Decode([]byte(`{"type":"bye","payload":[1]}`), &bye)
	assert.Error(t, err)
	assert.Equal(t, TypeBye, typ)
}
