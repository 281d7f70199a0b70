package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/smithy-go"

	"github.com/scoreform-io/scoreform/internal/logging"
)

// Service names one ECS service recorded in terraform state.
type Service struct {
	Cluster string
	Name    string
}

func (s Service) String() string {
	return s.Cluster + "/" + s.Name
}

// DrainOptions bound the polling loop.
type DrainOptions struct {
	// PollInterval is the delay between DescribeServices calls.
	PollInterval time.Duration
	// Timeout caps how long a single service may take to drain.
	Timeout time.Duration
	// DeleteServices force-deletes each service after it drains, so a
	// later destroy does not race the scheduler.
	DeleteServices bool
}

func (o DrainOptions) withDefaults() DrainOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Minute
	}
	return o
}

// Drainer scales ECS services to zero and waits for their tasks to
// stop. ECS refuses to delete clusters with active services, so this
// runs before terraform destroy.
type Drainer struct {
	ecs  ECSAPI
	opts DrainOptions
}

// NewDrainer wires a drainer to an ECS client.
func NewDrainer(api ECSAPI, opts DrainOptions) *Drainer {
	return &Drainer{ecs: api, opts: opts.withDefaults()}
}

// Drain scales every service to zero, then polls each until it reports
// no running tasks. Services the control plane no longer knows about
// count as drained. The passes are split so all services wind down in
// parallel while we wait on the slowest.
func (d *Drainer) Drain(ctx context.Context, services []Service) error {
	for _, svc := range services {
		if err := d.scaleToZero(ctx, svc); err != nil {
			return err
		}
	}
	for _, svc := range services {
		if err := d.awaitDrained(ctx, svc); err != nil {
			return err
		}
	}
	if d.opts.DeleteServices {
		for _, svc := range services {
			if err := d.deleteService(ctx, svc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Drainer) scaleToZero(ctx context.Context, svc Service) error {
	logging.Info("scaling service to zero", "service", svc.String())
	_, err := d.ecs.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:      aws.String(svc.Cluster),
		Service:      aws.String(svc.Name),
		DesiredCount: aws.Int32(0),
	})
	if err != nil {
		if isGone(err) {
			logging.Warn("service already gone", "service", svc.String())
			return nil
		}
		return fmt.Errorf("scale %s to zero: %w", svc, err)
	}
	return nil
}

func (d *Drainer) awaitDrained(ctx context.Context, svc Service) error {
	deadline := time.Now().Add(d.opts.Timeout)
	for {
		out, err := d.ecs.DescribeServices(ctx, &ecs.DescribeServicesInput{
			Cluster:  aws.String(svc.Cluster),
			Services: []string{svc.Name},
		})
		if err != nil {
			if isGone(err) {
				return nil
			}
			return fmt.Errorf("describe %s: %w", svc, err)
		}

		var running int32
		found := false
		for _, s := range out.Services {
			running += s.RunningCount
			found = true
		}
		if !found || running == 0 {
			logging.Info("service drained", "service", svc.String())
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("service %s still reports %d running task(s) after %s", svc, running, d.opts.Timeout)
		}

		logging.Debug("waiting for tasks to stop", "service", svc.String(), "running", running)
		select {
		case <-ctx.Done():
			return fmt.Errorf("drain %s: %w", svc, ctx.Err())
		case <-time.After(d.opts.PollInterval):
		}
	}
}

func (d *Drainer) deleteService(ctx context.Context, svc Service) error {
	logging.Info("deleting service", "service", svc.String())
	_, err := d.ecs.DeleteService(ctx, &ecs.DeleteServiceInput{
		Cluster: aws.String(svc.Cluster),
		Service: aws.String(svc.Name),
		Force:   aws.Bool(true),
	})
	if err != nil && !isGone(err) {
		return fmt.Errorf("delete %s: %w", svc, err)
	}
	return nil
}

// isGone reports whether err is the control plane saying the cluster or
// service no longer exists. Drain treats that as success.
func isGone(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.ErrorCode() {
	case "ClusterNotFoundException", "ServiceNotFoundException", "ServiceNotActiveException":
		return true
	}
	return false
}
