package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stamp(t *testing.T, v, c, d string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })
	Version, Commit, Date = v, c, d
}

func TestInfo(t *testing.T) {
	stamp(t, "0.3.0", "9f8e7d6c5b4a", "2026-10-01")

	info := Info()
	assert.Equal(t, "lively 0.3.0 (9f8e7d6, 2026-10-01, "+runtime.GOOS+"/"+runtime.GOARCH+")", info)
}

func TestInfo_Unstamped(t *testing.T) {
	assert.Contains(t, Info(), "lively dev (unknown, unknown,")
}

func TestUserAgent(t *testing.T) {
	stamp(t, "1.0.0", "", "")
	assert.Equal(t, "lively/1.0.0", UserAgent())
}

func TestShort(t *testing.T) {
	for in, want := range map[string]string{
		"":         "",
		"abc":      "abc",
		"1234567":  "1234567",
		"12345678": "1234567",
	} {
		assert.Equal(t, want, short(in), in)
	}
}
