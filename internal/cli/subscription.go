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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/projectbeskar/smctl/internal/model"
)

func (a *App) affinityGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "affinity-group",
		Aliases: []string{"affinitygroup", "ag"},
		Short:   "Inspect affinity groups",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List affinity groups",
			Args:  cobra.NoArgs,
			RunE:  a.listAffinityGroups,
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Show an affinity group and the services in it",
			Args:  cobra.ExactArgs(1),
			RunE:  a.getAffinityGroup,
		},
	)
	return cmd
}

func (a *App) listAffinityGroups(cmd *cobra.Command, _ []string) error {
	ctx := a.context(cmd)

	resp, err := a.client.ListAffinityGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list affinity groups: %w", err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.AffinityGroupContext](a, cmd, resp.AffinityGroups, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "LABEL", "LOCATION", "CAPABILITIES"}}
		for _, g := range out {
			t.AddRow(g.Name, g.Label, g.Location, g.Capabilities)
		}
		return t
	})
}

func (a *App) getAffinityGroup(cmd *cobra.Command, args []string) error {
	if err := checkParams(nameParams{Name: args[0]}); err != nil {
		return err
	}
	ctx := a.context(cmd)

	resp, err := a.client.GetAffinityGroup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get affinity group %s: %w", args[0], err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := project[model.AffinityGroupContext](a, cmd, resp, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "LOCATION", "KIND", "SERVICE", "URL"}}
		for _, s := range out.HostedServices {
			t.AddRow(out.Name, out.Location, "hosted", s.ServiceName, s.URL)
		}
		for _, s := range out.StorageServices {
			t.AddRow(out.Name, out.Location, "storage", s.ServiceName, s.URL)
		}
		if len(t.Rows) == 0 {
			t.AddRow(out.Name, out.Location, "", "", "")
		}
		return t
	})
}

func (a *App) locationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "location",
		Aliases: []string{"locations"},
		Short:   "Inspect datacenter locations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the locations available to the subscription",
		Args:  cobra.NoArgs,
		RunE:  a.listLocations,
	})
	return cmd
}

func (a *App) listLocations(cmd *cobra.Command, _ []string) error {
	ctx := a.context(cmd)

	resp, err := a.client.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list locations: %w", err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.LocationsContext](a, cmd, resp.Locations, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "DISPLAY NAME", "SERVICES"}}
		for _, l := range out {
			t.AddRow(l.Name, l.DisplayName, l.AvailableServices)
		}
		return t
	})
}

func (a *App) osCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "os",
		Short: "Inspect guest operating system versions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List guest operating system versions",
		Args:  cobra.NoArgs,
		RunE:  a.listOperatingSystems,
	})
	return cmd
}

func (a *App) listOperatingSystems(cmd *cobra.Command, _ []string) error {
	ctx := a.context(cmd)

	resp, err := a.client.ListOperatingSystems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list operating systems: %w", err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.OSVersionsContext](a, cmd, resp.OperatingSystems, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"FAMILY", "FAMILY LABEL", "VERSION", "ACTIVE", "DEFAULT"}}
		for _, o := range out {
			t.AddRow(strconv.Itoa(o.Family), o.FamilyLabel, o.Version, o.IsActive, o.IsDefault)
		}
		return t
	})
}

func (a *App) diskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "disk",
		Aliases: []string{"disks"},
		Short:   "Inspect the disk repository",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List disks",
		Args:  cobra.NoArgs,
		RunE:  a.listDisks,
	})
	return cmd
}

func (a *App) listDisks(cmd *cobra.Command, _ []string) error {
	ctx := a.context(cmd)

	resp, err := a.client.ListDisks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list disks: %w", err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.DiskContext](a, cmd, resp.Disks, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "OS", "SIZE (GB)", "LOCATION", "ATTACHED TO"}}
		for _, d := range out {
			attached := ""
			if d.AttachedTo != nil {
				attached = d.AttachedTo.HostedServiceName + "/" + d.AttachedTo.RoleName
			}
			t.AddRow(d.DiskName, d.OS, d.DiskSizeInGB, d.Location, attached)
		}
		return t
	})
}

func (a *App) imageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image",
		Aliases: []string{"images"},
		Short:   "Inspect OS images",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List OS images",
		Args:  cobra.NoArgs,
		RunE:  a.listImages,
	})
	return cmd
}

func (a *App) listImages(cmd *cobra.Command, _ []string) error {
	ctx := a.context(cmd)

	resp, err := a.client.ListImages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.OSImageContext](a, cmd, resp.Images, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "CATEGORY", "OS", "SIZE (GB)", "PUBLISHED"}}
		for _, img := range out {
			published := ""
			if img.PublishedDate != nil {
				published = img.PublishedDate.Format("2006-01-02")
			}
			t.AddRow(img.ImageName, img.Category, img.OS, img.LogicalSizeInGB, published)
		}
		return t
	})
}
