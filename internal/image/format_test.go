package image_test

import (
	"bytes"
	"testing"

	"github.com/go-c0vm/c0vm/internal/image"
	"github.com/stretchr/testify/require"
)

func Test_EncodeDecode_RoundTrip(t *testing.T) {
	b := image.NewBuilder()
	b.Int(42)
	msg := b.CString("hi")
	_, fn := b.Func(0, 1)
	fn.Bipush(1)
	fn.Ildc(0)
	fn.Iadd()
	fn.Vstore(0)
	fn.Aldc(msg)
	fn.Pop()
	fn.Vload(0)
	fn.Return()
	fn.Finish()
	img := b.Image()

	var buf bytes.Buffer
	require.NoError(t, image.Encode(&buf, img))

	got, err := image.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, img.IntPool, got.IntPool)
	require.Equal(t, img.StringPool, got.StringPool)
	require.Equal(t, len(img.FunctionPool), len(got.FunctionPool))
	require.Equal(t, img.FunctionPool[0].Code, got.FunctionPool[0].Code)
}

func Test_Decode_RejectsBadMagic(t *testing.T) {
	_, err := image.Decode(bytes.NewReader([]byte{0, 0, 0, 0, 0, 1}))
	require.Error(t, err)
}

func Test_Builder_EntryFunc(t *testing.T) {
	b := image.NewBuilder()
	_, fn := b.Func(0, 0)
	fn.Bipush(5)
	fn.Return()
	fn.Finish()
	img := b.Image()

	entry, err := img.EntryFunc()
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x05, 0x90}, entry.Code)
}
