package fbx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/fbxcodec/pkg/fbx"
)

func Test_Reader_Binary_Rejects_Malformed_Magic_Trailer(t *testing.T) {
	t.Parallel()

	data := append([]byte("Kaydara FBX Binary  "), 0xFF, 0xFF, 0, 0, 0, 0)

	r := fbx.NewReader(bytes.NewReader(data), fbx.ReaderConfig{})

	_, err := r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, fbx.ErrInvalidMagic)
}

func Test_Reader_Binary_Tolerates_Missing_Footer_As_Warning(t *testing.T) {
	t.Parallel()

	header := append([]byte("Kaydara FBX Binary  "), 0x1A, 0x00, 0xE8, 0x1C, 0, 0) // version 7400 LE
	nullRecord := make([]byte, 13)                                                 // narrow (pre-7500) null record, no footer following

	data := append(header, nullRecord...)

	r := fbx.NewReader(bytes.NewReader(data), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	ev, err := r.Next() // null record with no footer after it: tolerated
	require.NoError(t, err)
	assert.Equal(t, fbx.EventEndFbx, ev.Kind)
	assert.NotEmpty(t, r.Warnings())
}

func Test_Reader_Binary_Rejects_Invalid_Property_Type_Code(t *testing.T) {
	t.Parallel()

	buf := &seekBuf{}
	w := fbx.NewWriter(buf, fbx.WriterConfig{})
	require.NoError(t, w.Write(fbx.NewStartFbx(fbx.Binary(7400))))
	require.NoError(t, w.Write(fbx.NewStartNode("N", []fbx.Property{fbx.NewI32(1).Borrow()})))
	require.NoError(t, w.Write(fbx.NewEndNode()))
	require.NoError(t, w.Write(fbx.NewEndFbx()))

	data := buf.Bytes()

	// Corrupt the single property's type code byte. Layout: 20 magic + 2
	// trailer + 4 version + 13-byte narrow record header (includes the
	// name-len byte) + 1-byte name ("N") = byte 40 is the property's type
	// code.
	data[40] = '?'

	r := fbx.NewReader(bytes.NewReader(data), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	_, err = r.Next() // StartNode decode fails on the corrupted type code
	require.Error(t, err)
	assert.ErrorIs(t, err, fbx.ErrDataError)
}
