package obs

import (
	"encoding/json"
	"log"
	"os"
)

// line-oriented JSON on stdout; no prefixes or flags so every line is
// a single parseable object.
var logger = log.New(os.Stdout, "", 0)

const marshalFailLine = `{"level":"error","msg":"log marshal failed"}`

// Logger returns the shared structured logger. Tests may swap its
// output writer.
func Logger() *log.Logger {
	return logger
}

// LogRequest emits one structured JSON log line with common HTTP fields.
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Println(marshalFailLine)
		return
	}
	logger.Println(string(data))
}
