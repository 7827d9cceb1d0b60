package fbx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/fbxcodec/pkg/fbx"
)

func Test_Reader_Ascii_Parses_OneLine_Leaf_Node(t *testing.T) {
	t.Parallel()

	r := fbx.NewReader(bytes.NewReader([]byte("Version: 7400\n")), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	ev, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, fbx.EventStartNode, ev.Kind)
	assert.Equal(t, "Version", ev.Name)
	require.Len(t, ev.Properties, 1)

	i32, ok := ev.Properties[0].I32()
	require.True(t, ok)
	assert.Equal(t, int32(7400), i32)

	ev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, fbx.EventEndNode, ev.Kind)
}

func Test_Reader_Ascii_Parses_Container_Node_With_Children(t *testing.T) {
	t.Parallel()

	src := "Objects:  {\n\tModel: \"Cube\", \"Mesh\" {\n\t\tVersion: 232\n\t}\n}\n"

	r := fbx.NewReader(bytes.NewReader([]byte(src)), fbx.ReaderConfig{})

	var kinds []fbx.EventKind

	for {
		ev, err := r.Next()
		require.NoError(t, err)

		kinds = append(kinds, ev.Kind)

		if ev.Kind == fbx.EventEndFbx {
			break
		}
	}

	assert.Equal(t, []fbx.EventKind{
		fbx.EventStartFbx,
		fbx.EventStartNode, // Objects
		fbx.EventStartNode, // Model
		fbx.EventStartNode, // Version
		fbx.EventEndNode,   // Version
		fbx.EventEndNode,   // Model
		fbx.EventEndNode,   // Objects
		fbx.EventEndFbx,
	}, kinds)
}

func Test_Reader_Ascii_Yields_Comment_Events(t *testing.T) {
	t.Parallel()

	r := fbx.NewReader(bytes.NewReader([]byte("; a comment\nNode: 1\n")), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	ev, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, fbx.EventComment, ev.Kind)
	assert.Equal(t, "a comment", ev.Text)
}

func Test_Reader_Ascii_IgnoreComments_Drops_Comment_Events(t *testing.T) {
	t.Parallel()

	r := fbx.NewReader(bytes.NewReader([]byte("; a comment\nNode: 1\n")), fbx.ReaderConfig{IgnoreComments: true})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, fbx.EventStartNode, ev.Kind)
	assert.Equal(t, "Node", ev.Name)
}

func Test_Reader_Ascii_Parses_String_With_Entity_Escapes(t *testing.T) {
	t.Parallel()

	r := fbx.NewReader(bytes.NewReader([]byte("S: \"a &quot;quoted&quot; &amp; escaped&lf;line\"\n")), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	ev, err := r.Next()
	require.NoError(t, err)

	s, ok := ev.Properties[0].String()
	require.True(t, ok)
	assert.Equal(t, "a \"quoted\" & escaped\nline", s)
}

func Test_Reader_Ascii_Returns_Unimplemented_For_Array_Body(t *testing.T) {
	t.Parallel()

	r := fbx.NewReader(bytes.NewReader([]byte("Indices: *3 {\n\ta: 1,2,3\n}\n")), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	_, err = r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, fbx.ErrUnimplemented)
}

func Test_Reader_Ascii_Rejects_Unmatched_Closing_Brace(t *testing.T) {
	t.Parallel()

	r := fbx.NewReader(bytes.NewReader([]byte("}\n")), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	_, err = r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, fbx.ErrUnexpectedValue)
}

func Test_Reader_Ascii_Rejects_Unclosed_Node_At_EOF(t *testing.T) {
	t.Parallel()

	r := fbx.NewReader(bytes.NewReader([]byte("Objects: {\n")), fbx.ReaderConfig{})

	_, err := r.Next() // StartFbx
	require.NoError(t, err)

	_, err = r.Next() // Objects
	require.NoError(t, err)

	_, err = r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, fbx.ErrUnexpectedEOF)
}
