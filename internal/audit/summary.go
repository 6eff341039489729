package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// Summary aggregates a session's recorded executions for the
// execution_summary surface.
type Summary struct {
	SessionID      string
	Total          int
	Failed         int
	ByTool         map[string]int
	MedianDuration time.Duration
}

// Summarize aggregates the newest executions of a session.
func (l *Log) Summarize(ctx context.Context, sessionID string, limit int) (Summary, error) {
	recs, err := l.RecentExecutions(ctx, sessionID, limit)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{SessionID: sessionID, ByTool: make(map[string]int)}
	var durations []time.Duration
	for _, rec := range recs {
		s.Total++
		if !rec.Success {
			s.Failed++
		}
		s.ByTool[rec.ToolName]++
		if rec.DurationMS != nil {
			durations = append(durations, time.Duration(*rec.DurationMS)*time.Millisecond)
		}
	}
	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		s.MedianDuration = durations[len(durations)/2]
	}
	return s, nil
}

// String renders the summary as user-facing text.
func (s Summary) String() string {
	if s.Total == 0 {
		return "No tool executions recorded this session."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d tool execution(s), %d failed, median duration %s\n",
		s.Total, s.Failed, units.HumanDuration(s.MedianDuration))

	names := make([]string, 0, len(s.ByTool))
	for name := range s.ByTool {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %d\n", name, s.ByTool[name])
	}
	return b.String()
}
