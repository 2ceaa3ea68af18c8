package queries

import (
	"embed"
	"fmt"
)

//go:embed delete/*.sql insert/*.sql select/*.sql update/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type DeleteQueries struct {
	MetricRun string
}

type InsertQueries struct {
	MetricRun string
}

type SelectQueries struct {
	DealMetricsByRunId string
	MetricRunByRunId   string
}

type UpdateQueries struct {
	MetricRunCompletion string
}

type QueryHelperStruct struct {
	Delete DeleteQueries
	Insert InsertQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Delete: DeleteQueries{
		MetricRun: "delete/metric_run.sql",
	},
	Insert: InsertQueries{
		MetricRun: "insert/metric_run.sql",
	},
	Select: SelectQueries{
		DealMetricsByRunId: "select/deal_metrics_by_run_id.sql",
		MetricRunByRunId:   "select/metric_run_by_run_id.sql",
	},
	Update: UpdateQueries{
		MetricRunCompletion: "update/metric_run_completion.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
