package rsrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile() *File {
	f := New()
	f.AddResource("rlëD", 128, "shuttle", []byte{0, 2, 0, 2, 0, 16, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0})
	f.AddResource("rlëD", 129, "", []byte{1, 2, 3})
	f.AddResource("PICT", 1000, "shuttle sprite", []byte{9, 8, 7, 6})
	f.AddResource("spïn", 400, "", []byte{0x03, 0xe8, 0x03, 0xe9, 0, 2, 0, 2, 0, 1, 0, 1})
	f.AddResource("shän", -1, "négative", []byte{0xff})
	return f
}

func assertSame(t *testing.T, want, got *File) {
	t.Helper()
	require.Len(t, got.Types(), len(want.Types()))
	for _, wt := range want.Types() {
		gt := got.TypeContainer(wt.Code())
		require.NotNil(t, gt, "type %q", wt.Code())
		require.Equal(t, wt.Count(), gt.Count())
		for i, wr := range wt.Resources() {
			gr := gt.Resources()[i]
			assert.Equal(t, wr.ID(), gr.ID())
			assert.Equal(t, wr.Name(), gr.Name())
			assert.Equal(t, wr.TypeCode(), gr.TypeCode())
			assert.Equal(t, wr.Data(), gr.Data())
		}
	}
}

func TestClassicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ndat")
	f := testFile()
	require.NoError(t, f.Write(path, FormatClassic))

	g, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatClassic, g.CurrentFormat())
	assertSame(t, f, g)
}

func TestRezRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.rez")
	f := testFile()
	require.NoError(t, f.Write(path, FormatRez))

	g, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatRez, g.CurrentFormat())
	assertSame(t, f, g)
}

func TestFormatConversion(t *testing.T) {
	dir := t.TempDir()
	classic := filepath.Join(dir, "test.ndat")
	rez := filepath.Join(dir, "test.rez")

	f := testFile()
	require.NoError(t, f.Write(classic, FormatClassic))
	g, err := ReadFile(classic)
	require.NoError(t, err)
	require.NoError(t, g.Write(rez, FormatRez))

	h, err := ReadFile(rez)
	require.NoError(t, err)
	assert.Equal(t, FormatRez, h.CurrentFormat())
	assertSame(t, f, h)
}

func TestFind(t *testing.T) {
	f := testFile()
	r := f.Find("PICT", 1000)
	require.NotNil(t, r)
	assert.Equal(t, "shuttle sprite", r.Name())
	assert.Equal(t, "PICT", r.TypeCode())

	assert.Nil(t, f.Find("PICT", 1001))
	assert.Nil(t, f.Find("STR ", 0))
	assert.Nil(t, f.TypeContainer("STR "))
}

func TestAddReplacesOnCollision(t *testing.T) {
	f := testFile()
	count := f.TypeContainer("PICT").Count()

	f.AddResource("PICT", 1000, "replacement", []byte{42})

	assert.Equal(t, count, f.TypeContainer("PICT").Count())
	r := f.Find("PICT", 1000)
	assert.Equal(t, "replacement", r.Name())
	assert.Equal(t, []byte{42}, r.Data())
}

func TestRemove(t *testing.T) {
	f := testFile()
	listing := f.TypeContainer("rlëD").Resources()
	require.Len(t, listing, 2)

	f.Find("rlëD", 128).Remove()

	assert.Nil(t, f.Find("rlëD", 128))
	assert.Equal(t, 1, f.TypeContainer("rlëD").Count())
	// The listing taken before the removal still holds both resources.
	assert.Len(t, listing, 2)
	assert.Equal(t, "", listing[0].TypeCode())
}

func TestAddWhileIterating(t *testing.T) {
	f := testFile()
	listing := f.TypeContainer("spïn").Resources()
	for range listing {
		f.AddResource("rlëD", 1000, "", []byte{1})
	}
	assert.Equal(t, 3, f.TypeContainer("rlëD").Count())
	assert.Len(t, listing, 1)
}

func TestRemovedTypeDroppedOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ndat")
	f := testFile()
	f.Find("shän", -1).Remove()
	require.NoError(t, f.Write(path, FormatClassic))

	g, err := ReadFile(path)
	require.NoError(t, err)
	assert.Nil(t, g.TypeContainer("shän"))
	assert.NotNil(t, g.TypeContainer("rlëD"))
}

func TestSetData(t *testing.T) {
	f := testFile()
	f.Find("PICT", 1000).SetData([]byte{1, 1, 2, 3, 5})
	assert.Equal(t, []byte{1, 1, 2, 3, 5}, f.Find("PICT", 1000).Data())
}

func TestMacRomanTypeCodes(t *testing.T) {
	// rlëD is four bytes in MacRoman even though the Go string is five.
	b := codeBytes("rlëD")
	assert.Equal(t, [4]byte{'r', 'l', 0x91, 'D'}, b)
	assert.Equal(t, "rlëD", fromMacRoman(b[:]))
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.ndat")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3}, 0644))
	_, err = ReadFile(bad)
	assert.Error(t, err)
}
