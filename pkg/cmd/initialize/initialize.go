/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package initialize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-presets/internal/config"
	"github.com/Paintersrp/an-presets/internal/state"
)

func NewCmdInit(s *state.State) *cobra.Command {
	var (
		vault   string
		backend string
		name    string
	)

	cmd := &cobra.Command{
		Use:     "initialize",
		Aliases: []string{"i", "init"},
		Short:   "Create or update the workspace configuration",
		Long: heredoc.Doc(`
			Writes the vault directory and storage backend of a workspace to the
			configuration file, creating the file and the workspace when needed.

			Examples:
			  an-presets init --vault ~/notes
			  an-presets init --vault ~/work-notes --name work --backend diskv
		`),
		Annotations: map[string]string{state.SkipAnnotation: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			home := s.Home
			if home == "" {
				var err error
				home, err = state.GetHomeDir()
				if err != nil {
					return err
				}
			}
			return run(cmd, home, strings.TrimSpace(name), vault, backend)
		},
	}

	cmd.Flags().StringVar(&vault, "vault", "", "Path to the notes vault")
	cmd.Flags().StringVar(&backend, "backend", config.BackendFile, "Storage backend (file, diskv, s3, postgres)")
	cmd.Flags().StringVar(&name, "name", "default", "Workspace to initialize")
	cmd.MarkFlagRequired("vault")

	return cmd
}

func run(cmd *cobra.Command, home, name, vault, backend string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	vault, err := filepath.Abs(strings.TrimSpace(vault))
	if err != nil {
		return fmt.Errorf("invalid vault path: %w", err)
	}
	if err := os.MkdirAll(vault, 0o755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	var initErr *config.ConfigInitError
	if err := config.EnsureConfigExists(home); err != nil && !errors.As(err, &initErr) {
		return err
	}

	cfg, err := config.Load(home)
	if err != nil {
		return err
	}

	if _, exists := cfg.Workspaces[name]; !exists {
		ws := &config.Workspace{
			VaultDir: vault,
			Storage:  config.Storage{Backend: backend},
		}
		if err := config.ValidateBackend(backend); err != nil {
			return err
		}
		if err := cfg.AddWorkspace(name, ws, true); err != nil {
			return err
		}
		cmd.Printf("Initialized workspace %q with vault %s\n", name, vault)
		return nil
	}

	if err := cfg.SwitchWorkspace(name); err != nil {
		return err
	}
	ws := cfg.MustWorkspace()
	ws.VaultDir = vault
	if err := cfg.SetBackend(backend); err != nil {
		return err
	}

	cmd.Printf("Updated workspace %q with vault %s\n", name, vault)
	return nil
}
