package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// statusBatchSize is the DescribeInstanceStatus limit on explicit instance IDs.
const statusBatchSize = 100

// eventTimeLayout renders scheduled event windows.
const eventTimeLayout = time.RFC3339

// discoverEC2Region pages through every instance in region, resolves its
// shape, collects its scheduled events and, when opts.DaysBack > 0, enriches
// running instances with their average CPUUtilization.
//
// Only the DescribeInstances failure is fatal for the region. Type lookups,
// status lookups and CloudWatch queries degrade to missing data.
func discoverEC2Region(
	ctx context.Context,
	clients *inventoryClients,
	region string,
	opts Options,
	now time.Time,
) ([]models.DiscoveredInstance, []models.ScheduledEvent, error) {
	paginator := ec2svc.NewDescribeInstancesPaginator(clients.EC2, &ec2svc.DescribeInstancesInput{})

	shapes := newTypeCache(clients.EC2)
	var (
		instances []models.DiscoveredInstance
		ids       []string
	)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("DescribeInstances page: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				di := toDiscoveredInstance(inst, region, shapes.lookup(ctx, inst.InstanceType))
				instances = append(instances, di)
				ids = append(ids, di.InstanceID)
			}
		}
	}

	events := collectScheduledEvents(ctx, clients.EC2, region, ids)

	if opts.DaysBack > 0 {
		end := now.UTC()
		start := end.AddDate(0, 0, -opts.DaysBack)
		for i := range instances {
			if instances[i].State != string(ec2types.InstanceStateNameRunning) {
				continue
			}
			instances[i].AvgCPUPercent = fetchAvgCPU(ctx, clients.CW, instances[i].InstanceID, start, end)
		}
	}

	return instances, events, nil
}

// toDiscoveredInstance converts an SDK instance to the internal model.
// vCPUs come from CpuOptions; DefaultVCpus is the fallback. info may be nil.
func toDiscoveredInstance(inst ec2types.Instance, region string, info *ec2types.InstanceTypeInfo) models.DiscoveredInstance {
	di := models.DiscoveredInstance{
		InstanceID:   aws.ToString(inst.InstanceId),
		InstanceType: string(inst.InstanceType),
		Region:       region,
	}
	if inst.State != nil {
		di.State = string(inst.State.Name)
	}

	if inst.CpuOptions != nil && inst.CpuOptions.CoreCount != nil {
		threads := int32(1)
		if inst.CpuOptions.ThreadsPerCore != nil {
			threads = *inst.CpuOptions.ThreadsPerCore
		}
		di.VCPUs = int(*inst.CpuOptions.CoreCount * threads)
	} else if info != nil && info.VCpuInfo != nil && info.VCpuInfo.DefaultVCpus != nil {
		di.VCPUs = int(*info.VCpuInfo.DefaultVCpus)
	}

	if info != nil && info.MemoryInfo != nil && info.MemoryInfo.SizeInMiB != nil {
		gb := float64(*info.MemoryInfo.SizeInMiB) / 1024
		di.MemoryGB = &gb
	}
	return di
}

// typeCache memoises DescribeInstanceTypes per instance type. A failed
// lookup is cached as nil.
type typeCache struct {
	client inventoryEC2Client
	seen   map[ec2types.InstanceType]*ec2types.InstanceTypeInfo
}

func newTypeCache(client inventoryEC2Client) *typeCache {
	return &typeCache{client: client, seen: make(map[ec2types.InstanceType]*ec2types.InstanceTypeInfo)}
}

func (c *typeCache) lookup(ctx context.Context, t ec2types.InstanceType) *ec2types.InstanceTypeInfo {
	if info, ok := c.seen[t]; ok {
		return info
	}
	var info *ec2types.InstanceTypeInfo
	out, err := c.client.DescribeInstanceTypes(ctx, &ec2svc.DescribeInstanceTypesInput{
		InstanceTypes: []ec2types.InstanceType{t},
	})
	if err == nil && len(out.InstanceTypes) > 0 {
		info = &out.InstanceTypes[0]
	}
	c.seen[t] = info
	return info
}

// collectScheduledEvents queries DescribeInstanceStatus in batches of
// statusBatchSize. A failed batch contributes no events.
func collectScheduledEvents(ctx context.Context, client inventoryEC2Client, region string, ids []string) []models.ScheduledEvent {
	var events []models.ScheduledEvent
	for start := 0; start < len(ids); start += statusBatchSize {
		end := min(start+statusBatchSize, len(ids))
		out, err := client.DescribeInstanceStatus(ctx, &ec2svc.DescribeInstanceStatusInput{
			InstanceIds:         ids[start:end],
			IncludeAllInstances: aws.Bool(true),
		})
		if err != nil {
			continue
		}
		for _, status := range out.InstanceStatuses {
			for _, ev := range status.Events {
				events = append(events, models.ScheduledEvent{
					InstanceID:  aws.ToString(status.InstanceId),
					Region:      region,
					EventCode:   string(ev.Code),
					NotBefore:   formatEventTime(ev.NotBefore),
					NotAfter:    formatEventTime(ev.NotAfter),
					Description: aws.ToString(ev.Description),
				})
			}
		}
	}
	return events
}

func formatEventTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(eventTimeLayout)
}

// fetchAvgCPU calls CloudWatch GetMetricStatistics to retrieve the average
// CPUUtilization for instanceID over [start, end) at 1-day granularity.
//
// Returns 0 when the call fails or no data points exist. Callers must treat
// 0 as "data unavailable", not "truly idle at 0% CPU".
func fetchAvgCPU(
	ctx context.Context,
	cw inventoryCWClient,
	instanceID string,
	start, end time.Time,
) float64 {
	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/EC2"),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String("InstanceId"),
				Value: aws.String(instanceID),
			},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(86400),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil || len(out.Datapoints) == 0 {
		return 0
	}

	var total float64
	var count int
	for _, dp := range out.Datapoints {
		if dp.Average != nil {
			total += *dp.Average
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
