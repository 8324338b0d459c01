/*
Copyright 2025.

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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectbeskar/smctl/internal/model"
	"github.com/projectbeskar/smctl/internal/obs/logging"
)

func (a *App) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storage",
		Aliases: []string{"storage-account", "sa"},
		Short:   "Inspect and remove storage accounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List storage accounts",
			Args:  cobra.NoArgs,
			RunE:  a.listStorageAccounts,
		},
		&cobra.Command{
			Use:   "get <account>",
			Short: "Show a storage account",
			Args:  cobra.ExactArgs(1),
			RunE:  a.getStorageAccount,
		},
		&cobra.Command{
			Use:   "keys <account>",
			Short: "Show the access keys of a storage account",
			Args:  cobra.ExactArgs(1),
			RunE:  a.getStorageKeys,
		},
		&cobra.Command{
			Use:     "remove <account>",
			Aliases: []string{"rm", "delete"},
			Short:   "Remove a storage account",
			Args:    cobra.ExactArgs(1),
			RunE:    a.removeStorageAccount,
		},
	)
	return cmd
}

func (a *App) listStorageAccounts(cmd *cobra.Command, _ []string) error {
	ctx := a.context(cmd)

	resp, err := a.client.ListStorageServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list storage accounts: %w", err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.StorageServicePropertiesOperationContext](a, cmd, resp.StorageServices, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "LOCATION", "AFFINITY GROUP", "STATUS", "GEO REPLICATION"}}
		for _, s := range out {
			t.AddRow(s.StorageAccountName, s.Location, s.AffinityGroup, s.StorageAccountStatus, s.GeoReplicationEnabled)
		}
		return t
	})
}

func (a *App) getStorageAccount(cmd *cobra.Command, args []string) error {
	if err := checkParams(nameParams{Name: args[0]}); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), args[0])

	resp, err := a.client.GetStorageService(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get storage account %s: %w", args[0], err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := project[model.StorageServicePropertiesOperationContext](a, cmd, resp, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "LOCATION", "STATUS", "ENDPOINTS", "PRIMARY", "SECONDARY"}}
		t.AddRow(out.StorageAccountName, out.Location, out.StorageAccountStatus, out.Endpoints, out.GeoPrimaryLocation, out.GeoSecondaryLocation)
		return t
	})
}

func (a *App) getStorageKeys(cmd *cobra.Command, args []string) error {
	if err := checkParams(nameParams{Name: args[0]}); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), args[0])

	resp, err := a.client.GetStorageKeys(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get keys of storage account %s: %w", args[0], err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := project[model.StorageServiceKeyOperationContext](a, cmd, resp, status)
	if err != nil {
		return err
	}
	out.StorageAccountName = args[0]

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "PRIMARY", "SECONDARY"}}
		t.AddRow(out.StorageAccountName, out.Primary, out.Secondary)
		return t
	})
}

func (a *App) removeStorageAccount(cmd *cobra.Command, args []string) error {
	if err := checkParams(nameParams{Name: args[0]}); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), args[0])

	status, err := a.client.DeleteStorageService(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to remove storage account %s: %w", args[0], err)
	}
	out, err := a.operation(cmd, status)
	if err != nil {
		return err
	}
	return a.printOperation(out)
}
