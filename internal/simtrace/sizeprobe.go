package simtrace

import "os"

// ProbeFileSize best-effort looks up a file's byte size on the host
// filesystem via an open+fstat-equivalent Stat call. This is outside the
// core (spec.md §1 explicitly excludes the host filesystem lookup from
// it) — it exists only so a caller building Calls from a source that
// doesn't carry byte counts can fill one in. Any error (missing file,
// permission denied, not a regular file) falls back to DefaultBytes;
// this function never fails its caller.
func ProbeFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return DefaultBytes
	}
	size := info.Size()
	if size <= 0 {
		return DefaultBytes
	}
	return size
}
