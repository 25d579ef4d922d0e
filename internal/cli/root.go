/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli is the eushlator command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"eushlator/internal/config"
	applog "eushlator/internal/log"
	"eushlator/internal/storage"
)

// errFailed is returned by commands that already reported their failures.
var errFailed = errors.New("one or more scenes failed")

type app struct {
	cfg     config.AppConfig
	cfgFile string
	wsDir   string
	level   string

	// ws is shared with the crash handler; it is filled once a workspace is opened.
	ws *storage.Workspace
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "eushlator",
		Short: "Eushlator - visual novel script translation pipeline",
		Long: `Eushlator extracts dialogue boxes from decompiled scene scripts, prepares
them for translation and splices translated text back into the scripts so
they can be recompiled.

A workspace holds the numbered pipeline folders (2_Decompiled,
3_ExtractedDialogue, 4_MachineTranslations, 5_Inserted, ...) and Utils.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.config/eushlator/config.yaml)")
	root.PersistentFlags().StringVarP(&a.wsDir, "workspace", "w", "", "workspace folder (overrides the config)")
	root.PersistentFlags().StringVarP(&a.level, "loglevel", "l", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newInitCmd(a),
		newExtractCmd(a),
		newRefineCmd(a),
		newReinsertCmd(a),
		newOverlayCheckCmd(a),
		newCorrectCmd(a),
		newSearchCmd(a),
		newRunsCmd(a),
		newPreviewCmd(a),
		newKeyCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) loadConfig() error {
	var (
		cfg config.AppConfig
		err error
	)
	if a.cfgFile != "" {
		cfg, err = config.LoadFrom(a.cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.wsDir != "" {
		cfg.Workspace = a.wsDir
	}
	if a.level != "" {
		cfg.Logging.Level = strings.ToLower(a.level)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	return nil
}

func (a *app) workspaceDir() (string, error) {
	dir, err := a.cfg.WorkspaceDir()
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return dir, nil
}

// openWorkspace opens the configured workspace and publishes it to the crash handler.
func (a *app) openWorkspace() (*storage.Workspace, error) {
	dir, err := a.workspaceDir()
	if err != nil {
		return nil, err
	}
	ws, err := storage.OpenWorkspace(dir)
	if err != nil {
		return nil, err
	}
	a.setWorkspace(ws)
	return ws, nil
}

func (a *app) setWorkspace(ws *storage.Workspace) {
	if a.ws != nil {
		*a.ws = *ws
	}
}

// Execute runs the command tree with args and returns the process exit code.
// ws receives the opened workspace so a deferred crash handler can report into it.
func Execute(ctx context.Context, ws *storage.Workspace, args []string) int {
	a := &app{ws: ws}
	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			applog.WithComponent("cli").Error("command failed", slog.Any("err", err))
			fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}
