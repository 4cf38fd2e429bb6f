// messages.go defines Bubble Tea messages used for async communication.
//
// Queries, training, and connectivity tests run in background commands and
// report back via these types so the UI never blocks.
package repl

import (
	"github.com/askdb/askdb/core"
	"github.com/askdb/askdb/store"
)

// queryDoneMsg is sent when a question finishes the pipeline.
type queryDoneMsg struct {
	res *core.QueryResult
	err error
}

// trainDoneMsg is sent when schema training completes.
type trainDoneMsg struct {
	database string
	ts       *store.TrainedSchema
	err      error
}

// testDoneMsg is sent when the connectivity test completes.
type testDoneMsg struct {
	err error
}

// confirmRequestMsg is sent from inside a running query when a destructive
// statement needs approval. The pipeline goroutine blocks on reply.
type confirmRequestMsg struct {
	sql   string
	reply chan bool
}
