package ghost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	require := require.New(t)

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		resp := NewResponse("\r\n  line one\nline two  \r\n")
		require.Equal("line one\nline two", resp.String())
		require.False(resp.Empty())
	})

	t.Run("empty reply", func(t *testing.T) {
		resp := NewResponse("  \r\n ")
		require.True(resp.Empty())
		require.Nil(resp.Lines())
	})

	t.Run("lines", func(t *testing.T) {
		resp := NewResponse("a\nb\nc")
		require.Equal([]string{"a", "b", "c"}, resp.Lines())
	})

	t.Run("contains", func(t *testing.T) {
		resp := NewResponse("data follows\nError : something went wrong")
		require.True(resp.Contains("Error"))
		require.False(resp.Contains("OK"))
	})
}

func TestParseStatus(t *testing.T) {
	require := require.New(t)

	t.Run("idle report", func(t *testing.T) {
		resp := NewResponse("GHOST STATUS REPORT - IDLE\nScan count : 0\nShutter : closed")
		report, ok := ParseStatus(resp)
		require.True(ok)
		require.True(report.Idle)
		require.Equal("GHOST STATUS REPORT - IDLE", report.HeaderLine)
	})

	t.Run("acquiring report", func(t *testing.T) {
		resp := NewResponse("GHOST STATUS REPORT - ACQUIRING\nScan count : 12")
		report, ok := ParseStatus(resp)
		require.True(ok)
		require.False(report.Idle)
	})

	t.Run("header on later line within window", func(t *testing.T) {
		resp := NewResponse("banner\n\n  GHOST STATUS REPORT - IDLE\nmore")
		report, ok := ParseStatus(resp)
		require.True(ok)
		require.True(report.Idle)
	})

	t.Run("header beyond scan window", func(t *testing.T) {
		resp := NewResponse("1\n2\n3\n4\n5\nGHOST STATUS REPORT - IDLE")
		_, ok := ParseStatus(resp)
		require.False(ok)
	})

	t.Run("garbled reply", func(t *testing.T) {
		_, ok := ParseStatus(NewResponse("no report here"))
		require.False(ok)

		_, ok = ParseStatus(NewResponse(""))
		require.False(ok)
	})
}

func TestParseInfo(t *testing.T) {
	require := require.New(t)

	t.Run("key value lines", func(t *testing.T) {
		resp := NewResponse("Version : 10.0.1\nSerial number : TFP-2342\nnote without colon\nPath : C:\\ghost\\bin")
		info := ParseInfo(resp)
		require.Equal("10.0.1", info["Version"])
		require.Equal("TFP-2342", info["Serial number"])
		// first colon splits, the rest stays in the value
		require.Equal("C:\\ghost\\bin", info["Path"])
		require.Len(info, 3)
	})

	t.Run("empty reply", func(t *testing.T) {
		require.Empty(ParseInfo(NewResponse("")))
	})
}
