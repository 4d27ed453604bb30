package workspace

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/config"
	"github.com/Paintersrp/an-presets/internal/state"
	"github.com/Paintersrp/an-presets/internal/storage"
)

func NewCmdWorkspace(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
	}

	cmd.AddCommand(
		newCmdWorkspaceList(s),
		newCmdWorkspaceShow(s),
		newCmdWorkspaceSwitch(s),
		newCmdWorkspaceAdd(s),
		newCmdWorkspaceRemove(s),
		newCmdWorkspaceBackend(s),
	)

	return cmd
}

func newCmdWorkspaceList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured workspaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := s.Config.WorkspaceNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workspaces configured")
				return nil
			}

			for _, name := range names {
				marker := " "
				if name == s.Config.CurrentWorkspace {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}

			return nil
		},
	}
}

func newCmdWorkspaceShow(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the settings of the active workspace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws := s.Workspace
			bold := color.New(color.Bold)

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("workspace"), s.WorkspaceName)
			tbl.AddRow(bold.Sprint("vault"), ws.VaultDir)
			tbl.AddRow(bold.Sprint("storage"), storage.Describe(s.Gateway))
			tbl.AddRow(bold.Sprint("retries"), ws.Storage.RetryCount())
			tbl.AddRow(bold.Sprint("case-sensitive tags"), ws.Tags.CaseSensitive)
			tbl.AddRow(bold.Sprint("cache size"), ws.Cache.Size)
			tbl.AddRow(bold.Sprint("watch"), ws.Watch)
			tbl.AddRow(bold.Sprint("presets"), len(s.Manager.List()))

			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
}

func newCmdWorkspaceSwitch(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch [name]",
		Short: "Switch the active workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])
			if target == "" {
				return fmt.Errorf("workspace name cannot be empty")
			}

			if err := s.Config.SwitchWorkspace(target); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to workspace %q\n", target)
			return nil
		},
	}
	return cmd
}

func newCmdWorkspaceAdd(s *state.State) *cobra.Command {
	var (
		name        string
		vault       string
		backend     string
		makeCurrent bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new workspace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("workspace name is required")
			}
			vault = strings.TrimSpace(vault)
			if vault == "" {
				return fmt.Errorf("vault path is required")
			}

			ws := cloneWorkspaceSettings(s.Workspace)
			ws.VaultDir = vault
			if backend != "" {
				if err := config.ValidateBackend(backend); err != nil {
					return err
				}
				if backend != ws.Storage.Backend {
					ws.Storage = config.Storage{Backend: backend}
				}
			}

			if err := s.Config.AddWorkspace(name, ws, makeCurrent); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added workspace %q\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the new workspace")
	cmd.Flags().StringVar(&vault, "vault", "", "Path to the workspace vault")
	cmd.Flags().StringVar(&backend, "backend", "", "Storage backend of the new workspace (default is the active one)")
	cmd.Flags().BoolVar(&makeCurrent, "current", false, "Switch to the new workspace after creation")

	return cmd
}

func newCmdWorkspaceRemove(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove an existing workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("workspace name cannot be empty")
			}

			if err := s.Config.RemoveWorkspace(name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed workspace %q\n", name)
			return nil
		},
	}

	return cmd
}

func newCmdWorkspaceBackend(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:       "backend [file|diskv|s3|postgres]",
		Short:     "Change the storage backend of the active workspace",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{config.BackendFile, config.BackendDiskv, config.BackendS3, config.BackendPostgres},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Config.SetBackend(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workspace %q now stores presets in %s\n", s.Config.CurrentWorkspace, s.Config.MustWorkspace().Storage.Backend)
			return nil
		},
	}
}

// cloneWorkspaceSettings copies everything but the store location, which is
// derived from the new workspace's name.
func cloneWorkspaceSettings(src *config.Workspace) *config.Workspace {
	if src == nil {
		return &config.Workspace{}
	}

	clone := &config.Workspace{
		Storage: config.Storage{
			Backend: src.Storage.Backend,
			Bucket:  src.Storage.Bucket,
			Region:  src.Storage.Region,
			DSN:     src.Storage.DSN,
		},
		Tags:  src.Tags,
		Cache: src.Cache,
		Watch: src.Watch,
	}
	if src.Storage.Retries != nil {
		retries := *src.Storage.Retries
		clone.Storage.Retries = &retries
	}
	return clone
}
