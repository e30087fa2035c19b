package api

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"glidecore/pkg/logging"
)

// maxLogValue bounds the values shown in the status line; durations, sizes
// and counters fit, stack-like error chains do not.
const maxLogValue = 24

var logAttr = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// keptLogKeys are shown whatever their length.
var keptLogKeys = map[string]bool{
	"flight": true,
	"rules":  true,
	"score":  true,
	"error":  true,
}

// LatestLogResponse is the last captured log record, ready for a status line.
type LatestLogResponse struct {
	Log   string `json:"log"`
	Level string `json:"level,omitempty"`
}

func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, parseLogLine(logging.GlobalLogCapture.GetLastLine()))
}

// parseLogLine turns a text-handler record into
// "HH:MM:SS message (key=value, ...)" with the keys sorted. Lines that are
// not key=value records pass through unchanged.
func parseLogLine(raw string) LatestLogResponse {
	matches := logAttr.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return LatestLogResponse{Log: raw}
	}

	var msg, clock, level string
	var params []string
	for _, m := range matches {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				clock = t.Format("15:04:05")
			}
		case "level":
			level = val
		case "msg":
			msg = val
		default:
			if len(val) > maxLogValue && !keptLogKeys[key] {
				continue
			}
			params = append(params, key+"="+val)
		}
	}
	if msg == "" {
		return LatestLogResponse{Log: raw}
	}

	sort.Strings(params)
	out := msg
	if clock != "" {
		out = clock + " " + msg
	}
	if len(params) > 0 {
		out += " (" + strings.Join(params, ", ") + ")"
	}
	return LatestLogResponse{Log: out, Level: level}
}
