// Package mcp exposes simulation runs over the Model Context Protocol.
package mcp

import (
	"time"
)

// SimRunsInput defines the input for the sim_runs tool.
type SimRunsInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum number of runs to return (default: all)"`
	Status string `json:"status,omitempty" jsonschema:"description=Only return runs with this outcome: 'completed' 'step-limit' or 'failed'"`
}

// RunSummary is one row of the sim_runs listing.
type RunSummary struct {
	Dir         string    `json:"dir"`
	Name        string    `json:"name"`
	Scheme      string    `json:"scheme"`
	Status      string    `json:"status"`
	TimeReached float64   `json:"time_reached"`
	FinalTime   float64   `json:"final_time"`
	Steps       int       `json:"steps"`
	Error       string    `json:"error,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}

// SimRunsOutput defines the output for the sim_runs tool.
type SimRunsOutput struct {
	Runs  []RunSummary `json:"runs" jsonschema:"description=Cataloged runs newest first"`
	Count int          `json:"count" jsonschema:"description=Number of runs returned"`
}

// SimRunInput defines the input for the sim_run tool.
type SimRunInput struct {
	Dir string `json:"dir" jsonschema:"description=Run directory; absolute or relative to the server root,required"`
}

// SimRunOutput defines the output for the sim_run tool. The catalog
// fields stay empty when the run finished without being cataloged.
type SimRunOutput struct {
	Dir         string                 `json:"dir"`
	Name        string                 `json:"name"`
	Scheme      string                 `json:"scheme"`
	InitialTime float64                `json:"initial_time"`
	FinalTime   float64                `json:"final_time"`
	Records     int                    `json:"records" jsonschema:"description=Number of recorded steps"`
	Fields      []string               `json:"fields,omitempty" jsonschema:"description=Numeric fields the records expose"`
	Latest      map[string]interface{} `json:"latest,omitempty" jsonschema:"description=The newest record"`
	Status      string                 `json:"status,omitempty" jsonschema:"description=Outcome recorded in the catalog"`
	TimeReached float64                `json:"time_reached,omitempty"`
	Steps       int                    `json:"steps,omitempty"`
	Evals       int                    `json:"evals,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// SimSeriesInput defines the input for the sim_series tool.
type SimSeriesInput struct {
	Dir       string `json:"dir" jsonschema:"description=Run directory; absolute or relative to the server root,required"`
	Field     string `json:"field" jsonschema:"description=Record field to extract e.g. 't' 'y.0' or 'energy',required"`
	MaxPoints int    `json:"max_points,omitempty" jsonschema:"description=Downsample to roughly this many points (default: 500)"`
}

// SimSeriesOutput defines the output for the sim_series tool.
type SimSeriesOutput struct {
	Field  string    `json:"field"`
	Points int       `json:"points" jsonschema:"description=Number of points after downsampling"`
	Total  int       `json:"total" jsonschema:"description=Number of records in the result file"`
	Times  []float64 `json:"times" jsonschema:"description=Record times parallel to values"`
	Values []float64 `json:"values"`
}
