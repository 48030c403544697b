package simtrace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrace_OpenUsesProbedFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))

	line := `10:20:30.123456 open("` + path + `", O_RDONLY) = 7`

	call, err := ParseStrace(line)
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, KindOpen, call.Kind)
	assert.Equal(t, path, call.Path)
	assert.Equal(t, 7, call.StreamID)
	assert.EqualValues(t, 4096, call.Bytes)
	assert.Equal(t, 10, call.WallTime.Hour)
	assert.Equal(t, 20, call.WallTime.Minute)
	assert.Equal(t, 30, call.WallTime.Second)
	assert.Equal(t, 123456, call.WallTime.Microsecond)
}

func TestParseStrace_OpenFallsBackToDefaultBytesWhenFileMissing(t *testing.T) {
	line := `10:20:30.000000 open("/no/such/file", O_RDONLY) = 3`

	call, err := ParseStrace(line)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultBytes, call.Bytes)
}

func TestParseStrace_Read(t *testing.T) {
	line := `11:00:00.500000 read(4, "...", 1024) = 1024`

	call, err := ParseStrace(line)
	require.NoError(t, err)
	assert.Equal(t, KindRead, call.Kind)
	assert.Equal(t, 4, call.StreamID)
	assert.EqualValues(t, 1024, call.Bytes)
}

func TestParseStrace_Write(t *testing.T) {
	line := `11:00:01.000000 write(5, "...", 2048) = 2048`

	call, err := ParseStrace(line)
	require.NoError(t, err)
	assert.Equal(t, KindWrite, call.Kind)
	assert.Equal(t, 5, call.StreamID)
	assert.EqualValues(t, 2048, call.Bytes)
}

func TestParseStrace_Close(t *testing.T) {
	line := `11:00:02.000000 close(6) = 0`

	call, err := ParseStrace(line)
	require.NoError(t, err)
	assert.Equal(t, KindClose, call.Kind)
	assert.Equal(t, 6, call.StreamID)
	assert.EqualValues(t, 0, call.Bytes)
}

func TestParseStrace_SignalMarkerLineIsSkippedNotErrored(t *testing.T) {
	line := `12:00:00.000000 --- SIGCHLD {si_signo=SIGCHLD} ---`

	call, err := ParseStrace(line)
	require.NoError(t, err)
	assert.Nil(t, call)
}

func TestParseStrace_TooFewFieldsIsAParseError(t *testing.T) {
	_, err := ParseStrace("garbage")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseStrace_BadHourFieldIsAParseError(t *testing.T) {
	line := `xx:00:00.000000 close(6) = 0`
	_, err := ParseStrace(line)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseStrace_UnknownKindIsKeptInert(t *testing.T) {
	line := `13:00:00.000000 mmap(0, 4096, PROT_READ, MAP_PRIVATE, 3, 0) = 140000000000`

	call, err := ParseStrace(line)
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.EqualValues(t, DefaultBytes, call.Bytes)
	assert.Equal(t, "n/a", call.Path)
}

func TestParseSeers_OpenRecord(t *testing.T) {
	// Fields 0-5 are filler the seers format carries but ParseSeers ignores.
	line := `a,b,c,d,e,f,1700000000.250000,open,/var/data/chunk0,g,8192`

	call, err := ParseSeers(line)
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, Kind("open"), call.Kind)
	assert.Equal(t, "/var/data/chunk0", call.Path)
	assert.EqualValues(t, 8192, call.Bytes)
	assert.Equal(t, 0, call.StreamID)
	assert.Equal(t, 250000, call.WallTime.Microsecond)
}

func TestParseSeers_ZeroByteCountFallsBackToDefault(t *testing.T) {
	line := `a,b,c,d,e,f,100.000000,open,/x,g,0`

	call, err := ParseSeers(line)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultBytes, call.Bytes)
}

func TestParseSeers_TooFewFieldsIsAParseError(t *testing.T) {
	_, err := ParseSeers("a,b,c")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseSeers_SignalMarkerKindIsSkipped(t *testing.T) {
	line := `a,b,c,d,e,f,100.000000,+++,/x,g,0`
	call, err := ParseSeers(line)
	require.NoError(t, err)
	assert.Nil(t, call)
}
