package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/jobs"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	root := NewRootCommand(stdout, new(bytes.Buffer))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func seededDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partytb.db")
	out, err := run(t, "seed", "--db", path, "--pg-dsn", "", "--redis-addr", "")
	require.NoError(t, err)
	require.Contains(t, out, "seeded 1 companies, 6 parties, 8 ledger entries")
	return path
}

func TestSeedInvalidatesMasterDataCache(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("partytb:masterdata:version", "4")
	path := filepath.Join(t.TempDir(), "partytb.db")

	out, err := run(t, "seed", "--db", path, "--pg-dsn", "", "--redis-addr", mr.Addr())
	require.NoError(t, err)
	require.Contains(t, out, "master data cache invalidated")

	ver, err := mr.Get("partytb:masterdata:version")
	require.NoError(t, err)
	require.Equal(t, "5", ver)
}

func TestReportCSV(t *testing.T) {
	db := seededDB(t)
	out, err := run(t, "report", "--db", db, "--pg-dsn", "",
		"--company", "Odyssey Trading", "--from", "2025-04-01", "--to", "2025-04-30", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Equal(t, []string{
		"# Company: Odyssey Trading | Party Type: Customer | Period: 2025-04-01 to 2025-04-30",
		"Customer,Opening (Dr),Opening (Cr),Debit,Credit,Closing (Dr),Closing (Cr)",
		"CUST-0001,1200.00,0.00,0.00,700.00,500.00,0.00",
		"CUST-0002,300.00,0.00,450.50,0.00,750.50,0.00",
		"Totals,1500.00,0.00,450.50,700.00,1250.50,0.00",
	}, lines)
}

func TestReportTableShowsNamesWhenConfigured(t *testing.T) {
	db := seededDB(t)
	out, err := run(t, "report", "--db", db, "--pg-dsn", "",
		"--company", "Odyssey Trading", "--party-type", "supplier", "--from", "2025-04-01", "--to", "2025-04-30")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "Supplier Name")
	require.Equal(t, []string{"SUPP-0001", "Delta", "Packaging", "5,000.00", "2,000.00", "3,000.00"}, strings.Fields(lines[2]))
	require.Equal(t, []string{"Totals", "5,000.00", "2,000.00", "3,000.00"}, strings.Fields(lines[3]))
}

func TestReportJSONWithTerritory(t *testing.T) {
	db := seededDB(t)
	out, err := run(t, "report", "--db", db, "--pg-dsn", "",
		"--company", "Odyssey Trading", "--from", "2025-04-01", "--to", "2025-04-30",
		"--territory", "South", "--format", "json")
	require.NoError(t, err)

	var report partytb.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Rows, 2)
	require.Equal(t, "CUST-0002", report.Rows[0].Party)
	require.True(t, report.Rows[1].IsTotal)
	require.Equal(t, "750.5", report.Rows[1].ClosingDebit.String())
}

func TestReportRejectsBadInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	cases := [][]string{
		{"--party-type", "Vendor", "--company", "X", "--from", "2025-04-01", "--to", "2025-04-30"},
		{"--company", "X", "--from", "2025-05-01", "--to", "2025-04-30"},
		{"--company", "X", "--from", "April", "--to", "2025-04-30"},
		{"--company", "X", "--from", "2025-04-01", "--to", "2025-04-30", "--format", "xml"},
	}
	for _, args := range cases {
		_, err := run(t, append([]string{"report", "--db", db, "--pg-dsn", ""}, args...)...)
		require.Error(t, err, args)
	}

	_, err := run(t, "report", "--db", db, "--pg-dsn", "", "--company", "Nope", "--from", "2025-04-01", "--to", "2025-04-30")
	require.ErrorIs(t, err, partytb.ErrCompanyNotFound)
}

type stubQueue struct {
	payloads []jobs.PartyTBExportPayload
	info     *asynq.QueueInfo
	closed   bool
}

func (s *stubQueue) EnqueuePartyTBExport(ctx context.Context, payload jobs.PartyTBExportPayload, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.payloads = append(s.payloads, payload)
	return &asynq.TaskInfo{ID: "t-1", Queue: jobs.QueueDefault}, nil
}

func (s *stubQueue) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, nil
}

func (s *stubQueue) ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return []*asynq.TaskInfo{{ID: "cron-1", Type: jobs.TaskPartyTBExport, NextProcessAt: time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)}}, nil
}

func (s *stubQueue) Close() error {
	s.closed = true
	return nil
}

func withStubQueue(t *testing.T) *stubQueue {
	t.Helper()
	q := &stubQueue{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Retry: 1}}
	prev := jobsFactory
	jobsFactory = func(string) *JobsCLI { return &JobsCLI{client: q, inspector: q} }
	t.Cleanup(func() { jobsFactory = prev })
	return q
}

func TestJobsExport(t *testing.T) {
	q := withStubQueue(t)

	out, err := run(t, "jobs", "export", "--company", "Odyssey Trading", "--party-type", "supplier")
	require.NoError(t, err)
	require.Contains(t, out, "enqueued t-1 on queue default")
	require.Len(t, q.payloads, 1)
	require.Equal(t, "Supplier", q.payloads[0].PartyType)
	require.Equal(t, jobs.PeriodPreviousMonth, q.payloads[0].PeriodScope)
	require.True(t, q.closed)

	_, err = run(t, "jobs", "export", "--party-type", "Customer", "--from", "2025-04-01", "--to", "2025-04-30")
	require.ErrorIs(t, err, partytb.ErrInvalidFilter)
	require.Len(t, q.payloads, 1)
}

func TestJobsInspectAndScheduled(t *testing.T) {
	withStubQueue(t)

	out, err := run(t, "jobs", "inspect")
	require.NoError(t, err)
	require.Equal(t, "queue=default pending=2 active=0 scheduled=0 retry=1\n", out)

	out, err = run(t, "jobs", "scheduled")
	require.NoError(t, err)
	require.Equal(t, "cron-1\tpartytb:export\t2025-05-01T03:00:00Z\n", out)
}
