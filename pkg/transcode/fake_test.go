package transcode

import (
	"fmt"
	"os/exec"
	"testing"
)

// fakeEncoder runs script with sh in place of ffmpeg. The script receives the
// encoder arguments as positional parameters.
func fakeEncoder(script string) CommandFactory {
	return func(binary string, args []string) *exec.Cmd {
		return exec.Command("sh", append([]string{"-c", script, "ffmpeg"}, args...)...)
	}
}

const parseArgs = `
start=0
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -start_number) start="$2"; shift ;;
    -hls_segment_filename) out="$2"; shift ;;
  esac
  shift
done
dir=$(dirname "$out")
`

// producingEncoder writes count segments and reports progress for each, then
// either exits or keeps running.
func producingEncoder(count int, linger bool) CommandFactory {
	tail := "echo progress=end"
	if linger {
		tail = "sleep 60"
	}

	return fakeEncoder(parseArgs + fmt.Sprintf(`
i=0
while [ $i -lt %d ]; do
  : > "$dir/$((start + i)).ts"
  printf 'out_time=00:00:%%02d.000000\nprogress=continue\n' $(( (i + 1) * 4 ))
  i=$((i + 1))
  sleep 0.01
done
%s
`, count, tail))
}

func hangingEncoder() CommandFactory {
	return fakeEncoder("exec sleep 60")
}

func failingEncoder() CommandFactory {
	return fakeEncoder("echo 'invalid input' >&2; exit 3")
}

func testOptions(source string) Options {
	return Options{
		SourcePath: source,
		Resolution: Resolution480p,
		Codec:      H264,
	}
}

func testSessionConfig(t *testing.T, factory CommandFactory) SessionConfig {
	return SessionConfig{
		FFmpegBinary:   "ffmpeg",
		TranscodeDir:   t.TempDir(),
		Settings:       DefaultSettings(),
		CommandFactory: factory,
	}
}
