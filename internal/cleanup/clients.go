// Package cleanup talks to the cloud control plane around terraform
// runs: draining ECS services before destroy and explaining stale state
// references. It never provisions anything.
package cleanup

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// ECSAPI is the slice of the ECS control plane the drainer uses.
type ECSAPI interface {
	UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error)
	DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
	DeleteService(ctx context.Context, params *ecs.DeleteServiceInput, optFns ...func(*ecs.Options)) (*ecs.DeleteServiceOutput, error)
}

// RDSAPI is the slice of the RDS control plane the pre-destroy check uses.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// Clients bundles the live AWS clients used around destroy.
type Clients struct {
	ECS ECSAPI
	RDS RDSAPI
}

// NewClients builds clients for region using the default credential
// chain, the same one terraform resolves.
func NewClients(ctx context.Context, region string) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Clients{
		ECS: ecs.NewFromConfig(cfg),
		RDS: rds.NewFromConfig(cfg),
	}, nil
}
