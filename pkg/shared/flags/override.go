package flags

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// AddOverride registers --overrides-global. Leaving it unset keeps the
// assignment's flag unspecified, which resolution treats as true.
func AddOverride(cmd *cobra.Command) {
	cmd.Flags().
		String("overrides-global", "", "Whether the assignment wins over the global default (true, false, or unset)")
}

// HandleOverride returns nil when the flag was not given.
func HandleOverride(cmd *cobra.Command) (*bool, error) {
	raw, err := cmd.Flags().GetString("overrides-global")
	if err != nil {
		return nil, err
	}
	return ParseOverride(raw)
}

// ParseOverride turns "", "unset", "true" or "false" into a tri-state flag.
func ParseOverride(raw string) (*bool, error) {
	switch raw {
	case "", "unset":
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --overrides-global value %q: expected true, false or unset", raw)
	}
	return &v, nil
}
