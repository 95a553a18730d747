package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/jobs"
)

type exportEnqueuer interface {
	EnqueuePartyTBExport(ctx context.Context, payload jobs.PartyTBExportPayload, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type queueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	Close() error
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    exportEnqueuer
	inspector queueInspector
}

// NewJobsCLI initialises the helpers against the Redis address.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// TriggerExport validates and enqueues an export.
func (c *JobsCLI) TriggerExport(ctx context.Context, payload jobs.PartyTBExportPayload, now time.Time) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	f, err := payload.Filter(now)
	if err != nil {
		return nil, err
	}
	if err := partytb.ValidateFilter(f); err != nil {
		return nil, err
	}
	payload.PartyType = string(f.PartyType)
	return c.client.EnqueuePartyTBExport(ctx, payload)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// ListScheduled returns scheduled task infos for observability.
func (c *JobsCLI) ListScheduled(size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

// jobsFactory lets tests substitute the queue connection.
var jobsFactory = NewJobsCLI

func newJobsCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage background export jobs",
	}
	cmd.AddCommand(newJobsExportCommand(g), newJobsInspectCommand(g), newJobsScheduledCommand(g))
	return cmd
}

func newJobsExportCommand(g *globalFlags) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Enqueue a CSV export; without --from/--to the previous month is exported",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := jobs.PartyTBExportPayload{
				Company:        ff.company,
				PartyType:      ff.partyType,
				FromDate:       ff.from,
				ToDate:         ff.to,
				Account:        ff.account,
				Party:          ff.party,
				Territory:      ff.territory,
				SalesPerson:    ff.salesPerson,
				ShowZeroValues: ff.showZero,
			}
			if ff.from == "" && ff.to == "" {
				payload.PeriodScope = jobs.PeriodPreviousMonth
			}
			c := jobsFactory(g.redisAddr)
			defer c.Close()
			info, err := c.TriggerExport(cmd.Context(), payload, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on queue %s\n", info.ID, info.Queue)
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}

func newJobsInspectCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show default queue statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := jobsFactory(g.redisAddr)
			defer c.Close()
			stats, err := c.InspectQueue()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
			return nil
		},
	}
}

func newJobsScheduledCommand(g *globalFlags) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := jobsFactory(g.redisAddr)
			defer c.Close()
			tasks, err := c.ListScheduled(size)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 10, "Maximum tasks to list")
	return cmd
}
