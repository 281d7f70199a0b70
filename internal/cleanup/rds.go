package cleanup

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/smithy-go"
)

// StaleDBInstances returns the identifiers from the given list that RDS
// no longer knows about. State can record instances that were deleted
// out of band, and destroy fails confusingly on those, so callers warn
// about them up front.
func StaleDBInstances(ctx context.Context, api RDSAPI, identifiers []string) ([]string, error) {
	var stale []string
	for _, id := range identifiers {
		_, err := api.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
			DBInstanceIdentifier: aws.String(id),
		})
		if err != nil {
			var ae smithy.APIError
			if errors.As(err, &ae) && ae.ErrorCode() == "DBInstanceNotFound" {
				stale = append(stale, id)
				continue
			}
			return nil, fmt.Errorf("describe db instance %s: %w", id, err)
		}
	}
	return stale, nil
}
