// SPDX-License-Identifier: MPL-2.0

package ovf

import "strconv"

// NetworkDescriptor is a virtual network declared by the package. The
// synthetic name is positional and unrelated to the package's own network
// names.
type NetworkDescriptor struct {
	SyntheticName string
	Description   string
}

// ResolveNetworks lists the envelope's networks in document order, naming
// them net0, net1, ... An absent NetworkSection yields an empty slice.
func ResolveNetworks(env *Envelope) []NetworkDescriptor {
	nodes := env.NetworkSection.ChildrenNamed("Network")
	nets := make([]NetworkDescriptor, 0, len(nodes))
	for i, n := range nodes {
		var desc string
		if d := n.Child("Description"); d != nil {
			desc = d.Text
		}
		nets = append(nets, NetworkDescriptor{
			SyntheticName: "net" + strconv.Itoa(i),
			Description:   desc,
		})
	}
	return nets
}
