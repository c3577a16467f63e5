package uniqname

import (
	"runtime/debug"
	"testing"

	"gotest.tools/v3/assert"
)

func TestVersionFrom(t *testing.T) {
	t.Run("tagged module", func(t *testing.T) {
		info := &debug.BuildInfo{Main: debug.Module{Version: "v1.2.0"}}
		assert.Equal(t, versionFrom(info), "v1.2.0")
	})

	t.Run("dirty revision", func(t *testing.T) {
		info := &debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
			},
		}
		assert.Equal(t, versionFrom(info), "0123456789ab-dirty")
	})

	t.Run("no vcs info", func(t *testing.T) {
		assert.Equal(t, versionFrom(&debug.BuildInfo{}), "unknown")
	})
}
