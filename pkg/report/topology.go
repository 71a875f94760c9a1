package report

import (
	"fmt"
	"strings"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
)

type subnetInfo struct {
	name   string
	prefix string
	nsg    string
}

type vnetInfo struct {
	name          string
	resourceGroup string
	location      string
	addressSpace  []string
	subnets       []subnetInfo
}

// Topology renders the network layout: virtual networks with their
// subnets, then security groups, load balancers and public IPs. Details
// come from resource properties; resources discovered without properties
// still appear, just without address information.
func Topology(snap *inventory.Snapshot, width int) string {
	var b strings.Builder

	b.WriteString("# NETWORK TOPOLOGY\n")
	b.WriteString("\n## Virtual Networks and Subnets\n")

	var vnets []vnetInfo
	var nsgs, lbs, pips []azure.Resource

	for _, r := range snap.Resources {
		switch {
		case strings.EqualFold(r.Type, "Microsoft.Network/virtualNetworks"):
			vnets = append(vnets, parseVNet(r))
		case r.IsNetworkSecurityGroup():
			nsgs = append(nsgs, r)
		case strings.EqualFold(r.Type, "Microsoft.Network/loadBalancers"):
			lbs = append(lbs, r)
		case strings.EqualFold(r.Type, "Microsoft.Network/publicIPAddresses"):
			pips = append(pips, r)
		}
	}

	if len(vnets) == 0 {
		b.WriteString("No virtual networks found\n")
	}

	for _, vnet := range vnets {
		writeVNetBox(&b, vnet, width)
	}

	if len(nsgs) > 0 {
		b.WriteString("\n## Network Security Groups\n")
		for _, nsg := range nsgs {
			fmt.Fprintf(&b, "• %-30s (Resource Group: %s)\n", nsg.DisplayName(), nsg.GroupName())
		}
	}

	if len(lbs) > 0 {
		b.WriteString("\n## Load Balancers\n")
		for _, lb := range lbs {
			sku := stringValue(mapValue(lb.Properties, "sku"), "name")
			if sku == "" {
				sku = azure.Unknown
			}
			fmt.Fprintf(&b, "• %-30s (Type: %s)\n", lb.DisplayName(), sku)
		}
	}

	if len(pips) > 0 {
		b.WriteString("\n## Public IP Addresses\n")
		for _, pip := range pips {
			ip := stringValue(pip.Properties, "ipAddress")
			if ip == "" {
				ip = "Not assigned"
			}
			allocation := stringValue(pip.Properties, "publicIPAllocationMethod")
			if allocation == "" {
				allocation = azure.Unknown
			}
			fmt.Fprintf(&b, "• %-30s %-15s (%s)\n", pip.DisplayName(), ip, allocation)
		}
	}

	return b.String()
}

func parseVNet(r azure.Resource) vnetInfo {
	info := vnetInfo{
		name:          r.DisplayName(),
		resourceGroup: r.GroupName(),
		location:      r.LocationName(),
	}

	for _, v := range sliceValue(mapValue(r.Properties, "addressSpace"), "addressPrefixes") {
		if prefix, ok := v.(string); ok {
			info.addressSpace = append(info.addressSpace, prefix)
		}
	}

	for _, v := range sliceValue(r.Properties, "subnets") {
		sm, ok := v.(map[string]any)
		if !ok {
			continue
		}

		// Subnet attributes sit under "properties" in ARM output but may
		// arrive flattened from other tooling.
		attrs := mapValue(sm, "properties")
		if attrs == nil {
			attrs = sm
		}

		subnet := subnetInfo{
			name:   stringValue(sm, "name"),
			prefix: stringValue(attrs, "addressPrefix"),
		}
		if nsgRef := mapValue(attrs, "networkSecurityGroup"); nsgRef != nil {
			subnet.nsg = lastSegment(stringValue(nsgRef, "id"))
		}

		info.subnets = append(info.subnets, subnet)
	}

	return info
}

func writeVNetBox(b *strings.Builder, vnet vnetInfo, width int) {
	x := newBox(b, width)

	b.WriteByte('\n')
	x.top()
	x.line("VNet: %s", vnet.name)
	x.line("Resource Group: %s", vnet.resourceGroup)
	x.line("Address Space: %s", strings.Join(vnet.addressSpace, ", "))
	x.line("Location: %s", vnet.location)
	x.sep()
	x.line("SUBNETS:")

	for _, subnet := range vnet.subnets {
		nsg := "(No NSG)"
		if subnet.nsg != "" {
			nsg = fmt.Sprintf("(NSG: %s)", subnet.nsg)
		}
		x.line("  • %-20s %-15s %s", subnet.name, subnet.prefix, nsg)
	}

	if len(vnet.subnets) == 0 {
		x.line("  • No subnets found")
	}

	x.bottom()
}

func mapValue(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func sliceValue(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func stringValue(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
