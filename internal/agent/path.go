package agent

import "os"

// statDir reports whether path exists and is a directory. The second
// return mirrors the stat error so checkpointPath can tell "doesn't
// exist yet, treat as a file path" apart from a real I/O failure.
func statDir(path string) (isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
