package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Paintersrp/an-presets/internal/constants"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	for _, args := range [][]string{{"--short"}, {"-o", "yaml"}, {}} {
		cmd := NewCmdVersion()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(args)

		if err := cmd.Execute(); err != nil {
			t.Fatalf("version %v failed: %v", args, err)
		}
		if !strings.Contains(out.String(), constants.Version) {
			t.Fatalf("version %v: expected %q in %q", args, constants.Version, out.String())
		}
	}
}
