package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrich(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })

	t.Run("VCS 메타데이터로 보강", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Main: debug.Module{Version: "v0.3.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "f25b8bf0123456789"},
					{Key: "vcs.time", Value: "2026-10-01T00:00:00Z"},
				},
			}, true
		}

		bi := enrich(Info{})
		assert.Equal(t, "v0.3.0", bi.Version)
		assert.Equal(t, "f25b8bf0123456789", bi.Commit)
		assert.Equal(t, "2026-10-01T00:00:00Z", bi.BuildDate)
		assert.Equal(t, runtime.GOOS, bi.OS)
	})

	t.Run("주입된 값 우선", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "zzz"}}}, true
		}

		bi := enrich(Info{Version: "v1.0.0", Commit: "abc"})
		assert.Equal(t, "v1.0.0", bi.Version)
		assert.Equal(t, "abc", bi.Commit)
	})

	t.Run("정보 없음", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }

		bi := enrich(Info{})
		assert.Equal(t, unknown, bi.Version)
		assert.Equal(t, unknown, bi.Commit)
		assert.Equal(t, unknown, bi.BuildDate)
	})
}

func TestInfo_String(t *testing.T) {
	t.Parallel()

	i := Info{Version: "v1.0.0", Commit: "f25b8bf0123", GoVersion: "go1.24.0", OS: "linux", Arch: "amd64"}
	assert.Equal(t, "v1.0.0 (commit: f25b8bf, go1.24.0 linux/amd64)", i.String())
}
