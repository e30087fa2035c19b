package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glidecore/pkg/logging"
)

func TestParseLogLine(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantLevel string
	}{
		{
			name:      "Flight id kept, long values dropped",
			input:     `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Contest result improved" score="38.9 " rules=sprint flight=0b5c6e1a-2f7d-4c1e-9d0a-5f3b2c7e8a91 path=/var/lib/glidecore/flights/archive.db points=212`,
			want:      "06:50:46 Contest result improved (flight=0b5c6e1a-2f7d-4c1e-9d0a-5f3b2c7e8a91, points=212, rules=sprint, score=38.9)",
			wantLevel: "INFO",
		},
		{
			name:      "Long error kept",
			input:     `time=2026-01-18T07:10:00Z level=ERROR msg="Persistence: Failed to save flight" error="encode flight abc: short write to disk"`,
			want:      "07:10:00 Persistence: Failed to save flight (error=encode flight abc: short write to disk)",
			wantLevel: "ERROR",
		},
		{
			name:      "No params",
			input:     `time=2026-01-18T07:00:00Z level=INFO msg="Takeoff detected"`,
			want:      "07:00:00 Takeoff detected",
			wantLevel: "INFO",
		},
		{
			name:  "Not structured",
			input: "plain text",
			want:  "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLogLine(tt.input)
			assert.Equal(t, tt.want, got.Log)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestHandleLatestLog(t *testing.T) {
	h := slog.NewTextHandler(logging.GlobalLogCapture, nil)
	slog.New(h).Warn("GPS clock went backwards, restarting flight", "from", 41000.5, "to", 36000.1)

	rec := httptest.NewRecorder()
	handleLatestLog(rec, httptest.NewRequest(http.MethodGet, "/api/log/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LatestLogResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "WARN", resp.Level)
	assert.Contains(t, resp.Log, "GPS clock went backwards, restarting flight (from=41000.5, to=36000.1)")
}
