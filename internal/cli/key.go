/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eushlator/internal/config"
)

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage translation provider API keys in the OS keychain",
	}
	provider := func(args []string) string {
		if len(args) == 1 {
			return args[0]
		}
		return a.cfg.Provider.Name
	}

	set := &cobra.Command{
		Use:   "set [provider]",
		Short: "Store an API key read from stdin",
		Long: `Store the API key for provider (default from the config) in the OS keychain.
The key is read from the first line of stdin so it never shows up in the
shell history. Batch variants of a provider share its key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := provider(args)
			fmt.Fprintf(cmd.ErrOrStderr(), "API key for %s: ", p)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(line) == "" {
				return errors.New("no key given on stdin")
			}
			fmt.Fprintln(cmd.ErrOrStderr())
			if err := config.SetAPIKey(p, line); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored key for", p)
			return nil
		},
	}
	del := &cobra.Command{
		Use:   "delete [provider]",
		Short: "Remove a stored API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := provider(args)
			if err := config.DeleteAPIKey(p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed key for", p)
			return nil
		},
	}
	check := &cobra.Command{
		Use:   "check [provider]",
		Short: "Report whether a key is stored",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := provider(args)
			if _, err := config.APIKey(p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "A key is stored for", p)
			return nil
		},
	}
	cmd.AddCommand(set, del, check)
	return cmd
}
