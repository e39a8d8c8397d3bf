package hidproxy

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_RoundTrip(t *testing.T) {
	msg, err := NewMessage(CommandStart, `\\?\hid#vid_2c97&pid_4011&mi_00`)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	n, err := msg.WriteTo(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(3+len(msg.Data)), n)

	parsed, err := ParseMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, CommandStart, parsed.Command)

	var path string
	require.NoError(t, cbor.Unmarshal(parsed.Data, &path))
	assert.Equal(t, `\\?\hid#vid_2c97&pid_4011&mi_00`, path)
}

func TestMessage_Empty(t *testing.T) {
	msg, err := NewMessage(CommandEnumerate, nil)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	_, err = msg.WriteTo(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x00}, buf.Bytes())

	parsed, err := ParseMessage(buf)
	require.NoError(t, err)
	assert.Equal(t, CommandEnumerate, parsed.Command)
	assert.Empty(t, parsed.Data)
}

func TestParseMessage_Errors(t *testing.T) {
	_, err := ParseMessage(bytes.NewReader([]byte{0x09, 0x00, 0x00}))
	require.ErrorIs(t, err, ErrInvalidCommand)

	// Declared 4 bytes, only 2 present.
	_, err = ParseMessage(bytes.NewReader([]byte{0x02, 0x00, 0x04, 0xaa, 0xbb}))
	require.Error(t, err)
}
