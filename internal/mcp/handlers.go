package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/simpilot/simpilot/internal/results"
)

// defaultMaxPoints bounds a sim_series response.
const defaultMaxPoints = 500

// registerTools registers the run inspection tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_runs",
		Description: "List cataloged simulation runs, newest first",
	}, s.handleSimRuns)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_run",
		Description: "Inspect one run directory: config, outcome and latest record",
	}, s.handleSimRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "sim_series",
		Description: "Extract a numeric series from a run's result records",
	}, s.handleSimSeries)
}

func (s *Server) handleSimRuns(ctx context.Context, req *sdk.CallToolRequest, args SimRunsInput) (*sdk.CallToolResult, SimRunsOutput, error) {
	runs, err := s.catalog.List(ctx)
	if err != nil {
		return nil, SimRunsOutput{}, fmt.Errorf("listing runs: %w", err)
	}

	out := SimRunsOutput{Runs: []RunSummary{}}
	for _, r := range runs {
		if args.Status != "" && r.Status != args.Status {
			continue
		}
		out.Runs = append(out.Runs, RunSummary{
			Dir:         r.Dir,
			Name:        r.Name,
			Scheme:      r.Scheme,
			Status:      r.Status,
			TimeReached: r.TimeReached,
			FinalTime:   r.FinalTime,
			Steps:       r.Steps,
			Error:       r.Error,
			FinishedAt:  r.FinishedAt,
		})
		if args.Limit > 0 && len(out.Runs) == args.Limit {
			break
		}
	}
	out.Count = len(out.Runs)
	return nil, out, nil
}

func (s *Server) handleSimRun(ctx context.Context, req *sdk.CallToolRequest, args SimRunInput) (*sdk.CallToolResult, SimRunOutput, error) {
	dir, err := s.resolveDir(args.Dir)
	if err != nil {
		return nil, SimRunOutput{}, err
	}

	conf, err := results.Conf(dir)
	if err != nil {
		return nil, SimRunOutput{}, err
	}
	out := SimRunOutput{
		Dir:         dir,
		Name:        conf.Name,
		Scheme:      conf.Scheme,
		InitialTime: conf.InitialTime,
		FinalTime:   conf.FinalTime,
	}

	// A run that was interrupted before its first record has a config
	// copy but no result data, so the result fields stay best effort.
	if path, err := results.File(dir); err == nil {
		if n, err := results.Count(path); err == nil {
			out.Records = n
		}
		if fields, err := results.Fields(path); err == nil {
			out.Fields = fields
		}
		if last, err := results.Last(path); err == nil {
			var latest map[string]interface{}
			if json.Unmarshal(last, &latest) == nil {
				out.Latest = latest
			}
		}
	}

	for _, key := range []string{dir, args.Dir} {
		if row, err := s.catalog.ByDir(ctx, key); err == nil {
			out.Status = row.Status
			out.TimeReached = row.TimeReached
			out.Steps = row.Steps
			out.Evals = row.Evals
			out.Error = row.Error
			break
		}
	}
	return nil, out, nil
}

func (s *Server) handleSimSeries(ctx context.Context, req *sdk.CallToolRequest, args SimSeriesInput) (*sdk.CallToolResult, SimSeriesOutput, error) {
	if args.Field == "" {
		return nil, SimSeriesOutput{}, fmt.Errorf("field is required")
	}
	dir, err := s.resolveDir(args.Dir)
	if err != nil {
		return nil, SimSeriesOutput{}, err
	}
	path, err := results.File(dir)
	if err != nil {
		return nil, SimSeriesOutput{}, err
	}

	cols, err := results.Table(path, "t", args.Field)
	if err != nil {
		return nil, SimSeriesOutput{}, err
	}
	times, values := cols[0], cols[1]

	maxPoints := args.MaxPoints
	if maxPoints <= 0 {
		maxPoints = defaultMaxPoints
	}

	out := SimSeriesOutput{
		Field:  args.Field,
		Total:  len(values),
		Times:  downsample(times, maxPoints),
		Values: downsample(values, maxPoints),
	}
	out.Points = len(out.Values)
	return nil, out, nil
}

// resolveDir accepts absolute paths and paths relative to the server
// root. The target must exist and be a directory.
func (s *Server) resolveDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	candidates := []string{dir}
	if !filepath.IsAbs(dir) {
		candidates = append(candidates, filepath.Join(s.root, dir))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("run directory %s not found", dir)
}

// downsample strides over values so roughly max survive. The final
// point is always kept so the series still ends where the run did.
func downsample(values []float64, max int) []float64 {
	if len(values) <= max {
		return values
	}
	step := (len(values) + max - 1) / max
	out := make([]float64, 0, max+1)
	for i := 0; i < len(values); i += step {
		out = append(out, values[i])
	}
	if out[len(out)-1] != values[len(values)-1] {
		out = append(out, values[len(values)-1])
	}
	return out
}
