package compiler

import (
	"fmt"
	"net"
)

// Topology is the fixed VPC layout every deployment shares: three
// private and three public /24 subnets across three AZs with a single
// NAT gateway. The partition scheme is hard-coded, not spec-driven.
type Topology struct {
	CIDR           string
	AZs            []string
	PrivateSubnets []string
	PublicSubnets  []string
}

// deriveTopology slices the VPC CIDR into the fixed layout. Private
// subnets take third octets 1..3, public subnets 101..103, mirroring
// the conventional terraform-aws-modules/vpc examples.
func deriveTopology(cidr, region string) (*Topology, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("networking cidr %q: %w", cidr, err)
	}
	base := network.IP.To4()
	if base == nil {
		return nil, fmt.Errorf("networking cidr %q: not an IPv4 network", cidr)
	}

	t := &Topology{CIDR: cidr}
	for i := 0; i < 3; i++ {
		t.AZs = append(t.AZs, fmt.Sprintf("%s%c", region, 'a'+i))
		t.PrivateSubnets = append(t.PrivateSubnets, fmt.Sprintf("%d.%d.%d.0/24", base[0], base[1], i+1))
		t.PublicSubnets = append(t.PublicSubnets, fmt.Sprintf("%d.%d.%d.0/24", base[0], base[1], 101+i))
	}
	return t, nil
}
