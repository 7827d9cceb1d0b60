package fbx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/fbxcodec/pkg/fbx"
)

func writeBinaryDoc(t *testing.T, version uint32, events []fbx.Event) []byte {
	t.Helper()

	buf := &seekBuf{}
	w := fbx.NewWriter(buf, fbx.WriterConfig{})

	require.NoError(t, w.Write(fbx.NewStartFbx(fbx.Binary(version))))

	for _, ev := range events {
		require.NoError(t, w.Write(ev))
	}

	require.NoError(t, w.Write(fbx.NewEndFbx()))

	return buf.Bytes()
}

func readAllEvents(t *testing.T, data []byte) ([]fbx.Event, *fbx.Reader) {
	t.Helper()

	r := fbx.NewReader(bytes.NewReader(data), fbx.ReaderConfig{})

	var events []fbx.Event

	for {
		ev, err := r.Next()
		require.NoError(t, err)

		events = append(events, ev)

		if ev.Kind == fbx.EventEndFbx {
			break
		}
	}

	return events, r
}

func Test_Writer_Binary_Empty_Document_Round_Trips(t *testing.T) {
	t.Parallel()

	data := writeBinaryDoc(t, 7400, nil)

	events, r := readAllEvents(t, data)
	require.Len(t, events, 2)
	assert.Equal(t, fbx.EventStartFbx, events[0].Kind)
	assert.Equal(t, fbx.EventEndFbx, events[1].Kind)
	assert.Empty(t, r.Warnings())
}

func Test_Writer_Binary_Single_Empty_Node_Round_Trips(t *testing.T) {
	t.Parallel()

	data := writeBinaryDoc(t, 7400, []fbx.Event{
		fbx.NewStartNode("Empty", nil),
		fbx.NewEndNode(),
	})

	events, _ := readAllEvents(t, data)
	require.Len(t, events, 4)
	assert.Equal(t, "Empty", events[1].Name)
	assert.Equal(t, fbx.EventEndNode, events[2].Kind)
}

func Test_Writer_Binary_Scalar_Properties_Round_Trip(t *testing.T) {
	t.Parallel()

	props := []fbx.Property{
		fbx.NewBool(true).Borrow(),
		fbx.NewI16(42).Borrow(),
		fbx.NewI32(-100000).Borrow(),
		fbx.NewI64(1 << 40).Borrow(),
		fbx.NewF32(1.5).Borrow(),
		fbx.NewF64(2.25).Borrow(),
		fbx.NewString("hello").Borrow(),
		fbx.NewBinary([]byte{1, 2, 3}).Borrow(),
	}

	data := writeBinaryDoc(t, 7400, []fbx.Event{
		fbx.NewStartNode("Scalars", props),
		fbx.NewEndNode(),
	})

	events, _ := readAllEvents(t, data)
	require.Len(t, events, 4)

	got := events[1].Properties
	require.Len(t, got, len(props))

	b, ok := got[0].Bool()
	require.True(t, ok)
	assert.True(t, b)

	s, ok := got[6].String()
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	bin, ok := got[7].Binary(false)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, bin)
}

func Test_Writer_Binary_Compressed_VecI32_Array_Round_Trips(t *testing.T) {
	t.Parallel()

	vals := make([]int32, 2000)
	for i := range vals {
		vals[i] = int32(i % 7)
	}

	data := writeBinaryDoc(t, 7400, []fbx.Event{
		fbx.NewStartNode("Indices", []fbx.Property{fbx.NewVecI32(vals).Borrow()}),
		fbx.NewEndNode(),
	})

	events, _ := readAllEvents(t, data)
	require.Len(t, events, 4)

	got, ok := events[1].Properties[0].VecI32()
	require.True(t, ok)
	assert.Equal(t, vals, got)
}

func Test_Writer_Binary_Nested_Node_With_Child_Round_Trips(t *testing.T) {
	t.Parallel()

	data := writeBinaryDoc(t, 7400, []fbx.Event{
		fbx.NewStartNode("Parent", []fbx.Property{fbx.NewI32(1).Borrow()}),
		fbx.NewStartNode("Child", []fbx.Property{fbx.NewString("x").Borrow()}),
		fbx.NewEndNode(),
		fbx.NewEndNode(),
	})

	events, r := readAllEvents(t, data)
	require.Len(t, events, 6)
	assert.Equal(t, "Parent", events[1].Name)
	assert.Equal(t, "Child", events[2].Name)
	assert.Equal(t, fbx.EventEndNode, events[3].Kind)
	assert.Equal(t, fbx.EventEndNode, events[4].Kind)
	assert.Empty(t, r.Warnings())
}

func Test_Writer_Binary_Version_7500_Widens_To_64_Bit_Headers(t *testing.T) {
	t.Parallel()

	data := writeBinaryDoc(t, 7500, []fbx.Event{
		fbx.NewStartNode("Wide", []fbx.Property{fbx.NewI64(123).Borrow()}),
		fbx.NewEndNode(),
	})

	events, r := readAllEvents(t, data)
	require.Len(t, events, 4)
	assert.True(t, events[0].Format.Widens64())
	assert.Empty(t, r.Warnings())
}

func Test_Writer_Binary_Rejects_Comment_Without_IgnoreMinorErrors(t *testing.T) {
	t.Parallel()

	buf := &seekBuf{}
	w := fbx.NewWriter(buf, fbx.WriterConfig{})
	require.NoError(t, w.Write(fbx.NewStartFbx(fbx.Binary(7400))))

	err := w.Write(fbx.NewComment("nope"))
	assert.ErrorIs(t, err, fbx.ErrUnwritableEvent)
}

func Test_Writer_Binary_Drops_Comment_With_IgnoreMinorErrors(t *testing.T) {
	t.Parallel()

	buf := &seekBuf{}
	w := fbx.NewWriter(buf, fbx.WriterConfig{IgnoreMinorErrors: true})
	require.NoError(t, w.Write(fbx.NewStartFbx(fbx.Binary(7400))))
	require.NoError(t, w.Write(fbx.NewComment("nope")))
	require.NoError(t, w.Write(fbx.NewEndFbx()))

	assert.NotEmpty(t, w.Warnings())
}

func Test_Writer_Binary_Rejects_Unsupported_Version(t *testing.T) {
	t.Parallel()

	buf := &seekBuf{}
	w := fbx.NewWriter(buf, fbx.WriterConfig{})

	err := w.Write(fbx.NewStartFbx(fbx.Binary(1)))
	assert.ErrorIs(t, err, fbx.ErrUnsupportedFbxVersion)
}

func Test_Writer_Binary_Rejects_EndNode_Without_StartNode(t *testing.T) {
	t.Parallel()

	buf := &seekBuf{}
	w := fbx.NewWriter(buf, fbx.WriterConfig{})
	require.NoError(t, w.Write(fbx.NewStartFbx(fbx.Binary(7400))))

	err := w.Write(fbx.NewEndNode())
	assert.ErrorIs(t, err, fbx.ErrExtraEndNode)
}

func Test_Writer_Binary_Rejects_EndFbx_With_Unclosed_Nodes(t *testing.T) {
	t.Parallel()

	buf := &seekBuf{}
	w := fbx.NewWriter(buf, fbx.WriterConfig{})
	require.NoError(t, w.Write(fbx.NewStartFbx(fbx.Binary(7400))))
	require.NoError(t, w.Write(fbx.NewStartNode("Open", nil)))

	err := w.Write(fbx.NewEndFbx())
	assert.ErrorIs(t, err, fbx.ErrExtraEndNode)
}
