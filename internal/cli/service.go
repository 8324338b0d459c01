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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/projectbeskar/smctl/api/pvm"
	"github.com/projectbeskar/smctl/internal/model"
	"github.com/projectbeskar/smctl/internal/obs/logging"
)

func (a *App) serviceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"services", "svc"},
		Short:   "Inspect and remove hosted services",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List hosted services",
			Args:  cobra.NoArgs,
			RunE:  a.listServices,
		},
		&cobra.Command{
			Use:   "get <service>",
			Short: "Show a hosted service with its extended properties",
			Args:  cobra.ExactArgs(1),
			RunE:  a.getService,
		},
		&cobra.Command{
			Use:     "remove <service>",
			Aliases: []string{"rm", "delete"},
			Short:   "Remove a hosted service that has no deployments",
			Args:    cobra.ExactArgs(1),
			RunE:    a.removeService,
		},
	)
	return cmd
}

func (a *App) listServices(cmd *cobra.Command, _ []string) error {
	ctx := a.context(cmd)

	resp, err := a.client.ListHostedServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hosted services: %w", err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.HostedServiceDetailedContext](a, cmd, resp.HostedServices, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "LOCATION", "AFFINITY GROUP", "STATUS", "CREATED"}}
		for _, s := range out {
			t.AddRow(s.ServiceName, s.Location, s.AffinityGroup, s.Status, s.DateCreated.Format("2006-01-02"))
		}
		return t
	})
}

func (a *App) getService(cmd *cobra.Command, args []string) error {
	if err := checkParams(serviceParams{Service: args[0]}); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), args[0])

	resp, err := a.client.GetHostedService(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get hosted service %s: %w", args[0], err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := project[model.HostedServiceDetailedContext](a, cmd, resp, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"NAME", "LOCATION", "STATUS", "PROPERTY", "VALUE"}}
		keys := make([]string, 0, len(out.ExtendedProperties))
		for k := range out.ExtendedProperties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.AddRow(out.ServiceName, out.Location, out.Status, k, out.ExtendedProperties[k])
		}
		if len(keys) == 0 {
			t.AddRow(out.ServiceName, out.Location, out.Status, "", "")
		}
		return t
	})
}

func (a *App) removeService(cmd *cobra.Command, args []string) error {
	if err := checkParams(serviceParams{Service: args[0]}); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), args[0])

	status, err := a.client.DeleteHostedService(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to remove hosted service %s: %w", args[0], err)
	}
	out, err := a.operation(cmd, status)
	if err != nil {
		return err
	}
	return a.printOperation(out)
}

func (a *App) certificateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "certificate",
		Aliases: []string{"certificates", "cert"},
		Short:   "Inspect service certificates",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <service>",
			Short: "List the certificates of a hosted service",
			Args:  cobra.ExactArgs(1),
			RunE:  a.listCertificates,
		},
		&cobra.Command{
			Use:   "get <service> <algorithm> <thumbprint>",
			Short: "Show the public data of one certificate",
			Args:  cobra.ExactArgs(3),
			RunE:  a.getCertificate,
		},
	)
	return cmd
}

func (a *App) listCertificates(cmd *cobra.Command, args []string) error {
	if err := checkParams(serviceParams{Service: args[0]}); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), args[0])

	resp, err := a.client.ListServiceCertificates(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list certificates of %s: %w", args[0], err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := projectEach[model.CertificateContext](a, cmd, resp.Certificates, status)
	if err != nil {
		return err
	}
	for _, c := range out {
		c.ServiceName = args[0]
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"SERVICE", "ALGORITHM", "THUMBPRINT", "URL"}}
		for _, c := range out {
			t.AddRow(c.ServiceName, c.ThumbprintAlgorithm, c.Thumbprint, c.URL)
		}
		return t
	})
}

func (a *App) getCertificate(cmd *cobra.Command, args []string) error {
	p := certificateParams{Service: args[0], Algorithm: args[1], Thumbprint: args[2]}
	if err := checkParams(p); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), p.Service)

	resp, err := a.client.GetServiceCertificate(ctx, p.Service, p.Algorithm, p.Thumbprint)
	if err != nil {
		return fmt.Errorf("failed to get certificate %s-%s: %w", p.Algorithm, p.Thumbprint, err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := project[model.CertificateContext](a, cmd, resp, status)
	if err != nil {
		return err
	}
	out.ServiceName = p.Service
	out.ThumbprintAlgorithm = strings.ToLower(p.Algorithm)
	out.Thumbprint = strings.ToUpper(p.Thumbprint)

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"SERVICE", "ALGORITHM", "THUMBPRINT", "DATA"}}
		t.AddRow(out.ServiceName, out.ThumbprintAlgorithm, out.Thumbprint, out.Data)
		return t
	})
}

func (a *App) deploymentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployment",
		Aliases: []string{"deployments", "deploy"},
		Short:   "Inspect deployments",
	}

	var slot string
	get := &cobra.Command{
		Use:   "get <service>",
		Short: "Show the deployment in a slot of a hosted service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.getDeployment(cmd, args[0], slot)
		},
	}
	get.Flags().StringVar(&slot, "slot", "Production", "Deployment slot (Production|Staging)")
	cmd.AddCommand(get)
	return cmd
}

func (a *App) getDeployment(cmd *cobra.Command, service, slot string) error {
	p := slotParams{Service: service, Slot: string(canonicalSlot(slot))}
	if err := checkParams(p); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), service)

	resp, err := a.client.GetDeploymentBySlot(ctx, service, canonicalSlot(slot))
	if err != nil {
		return fmt.Errorf("failed to get %s deployment of %s: %w", p.Slot, service, err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := project[model.DeploymentInfoContext](a, cmd, resp, status)
	if err != nil {
		return err
	}
	out.ServiceName = service

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"SERVICE", "SLOT", "NAME", "STATUS", "INSTANCES", "VIRTUAL IPS", "LOCKED"}}
		vips := make([]string, 0, len(out.VirtualIPs))
		for _, v := range out.VirtualIPs {
			vips = append(vips, v.Address)
		}
		t.AddRow(out.ServiceName, out.Slot, out.DeploymentName, out.Status, len(out.RoleInstanceList), vips, out.Locked)
		return t
	})
}

func (a *App) extensionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extension",
		Aliases: []string{"extensions", "ext"},
		Short:   "Inspect deployment extensions",
	}
	rdp := &cobra.Command{
		Use:   "rdp",
		Short: "Inspect the remote desktop extension",
	}

	var slot string
	get := &cobra.Command{
		Use:   "get <service>",
		Short: "Show the roles the remote desktop extension is enabled on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.getRemoteDesktop(cmd, args[0], slot)
		},
	}
	get.Flags().StringVar(&slot, "slot", "Production", "Deployment slot (Production|Staging)")
	rdp.AddCommand(get)
	cmd.AddCommand(rdp)
	return cmd
}

func (a *App) getRemoteDesktop(cmd *cobra.Command, service, slot string) error {
	p := slotParams{Service: service, Slot: string(canonicalSlot(slot))}
	if err := checkParams(p); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), service)

	deployment, err := a.client.GetDeploymentBySlot(ctx, service, canonicalSlot(slot))
	if err != nil {
		return fmt.Errorf("failed to get %s deployment of %s: %w", p.Slot, service, err)
	}
	extensions, err := a.client.ListExtensions(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to list extensions of %s: %w", service, err)
	}
	status, err := a.status(ctx, extensions.Envelope())
	if err != nil {
		return err
	}

	out, err := a.remoteDesktop(cmd, deployment, extensions, status)
	if err != nil {
		return err
	}
	for _, e := range out {
		e.ServiceName = service
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"SERVICE", "ROLE", "TYPE", "EXTENSION ID", "USER", "EXPIRATION"}}
		for _, e := range out {
			t.AddRow(e.ServiceName, e.Role.String(), string(e.Role.RoleType), e.ID, e.UserName, e.Expiration)
		}
		return t
	})
}

func (a *App) vmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vm",
		Aliases: []string{"vms"},
		Short:   "Inspect and create virtual machine roles",
	}

	var slot string
	get := &cobra.Command{
		Use:   "get <service> <name>",
		Short: "Show a virtual machine role of a deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.getVM(cmd, args[0], args[1], slot)
		},
	}
	get.Flags().StringVar(&slot, "slot", "Production", "Deployment slot (Production|Staging)")

	cmd.AddCommand(
		get,
		&cobra.Command{
			Use:   "import <service> <deployment> <file>",
			Short: "Create a virtual machine role from a YAML definition",
			Args:  cobra.ExactArgs(3),
			RunE:  a.importVM,
		},
		&cobra.Command{
			Use:               "schema",
			Short:             "Print the JSON Schema of the vm import document",
			Args:              cobra.NoArgs,
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			RunE: func(cmd *cobra.Command, _ []string) error {
				raw, err := pvm.Schema()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			},
		},
	)
	return cmd
}

func (a *App) getVM(cmd *cobra.Command, service, name, slot string) error {
	p := vmParams{Service: service, Name: name, Slot: string(canonicalSlot(slot))}
	if err := checkParams(p); err != nil {
		return err
	}
	ctx := logging.WithService(a.context(cmd), service)

	resp, err := a.client.GetDeploymentBySlot(ctx, service, canonicalSlot(slot))
	if err != nil {
		return fmt.Errorf("failed to get %s deployment of %s: %w", p.Slot, service, err)
	}
	status, err := a.status(ctx, resp.Envelope())
	if err != nil {
		return err
	}
	out, err := a.persistentVMRole(cmd, service, resp, name, status)
	if err != nil {
		return err
	}

	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"SERVICE", "DEPLOYMENT", "NAME", "SIZE", "STATUS", "POWER", "IP ADDRESS"}}
		t.AddRow(out.ServiceName, out.DeploymentName, out.Name, out.InstanceSize, out.InstanceStatus, out.PowerState, out.IPAddress)
		return t
	})
}

func (a *App) printOperation(out *model.ManagementOperationContext) error {
	return a.printer.Print(out, func() Table {
		t := Table{Header: []string{"OPERATION", "OPERATION ID", "STATUS"}}
		t.AddRow(out.OperationDescription, out.OperationID, out.OperationStatus)
		return t
	})
}
