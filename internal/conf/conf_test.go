package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `"1.5s"`, want: 1500 * time.Millisecond},
		{name: "seconds", input: `3`, want: 3 * time.Second},
		{name: "garbage", input: `"soon"`, wantErr: true},
		{name: "wrong type", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.AsDuration())
		})
	}
}

func TestBootstrap_Unmarshal(t *testing.T) {
	raw := `{
		"server": {"http": {"addr": "0.0.0.0:8000", "timeout": "2s"}},
		"data": {"clickhouse": {"host": "ch.internal", "port": 8443, "timeout": "5s"}},
		"tracking": {"queue_size": 64, "workers": 2}
	}`

	var bc Bootstrap
	require.NoError(t, json.Unmarshal([]byte(raw), &bc))

	assert.Equal(t, "0.0.0.0:8000", bc.Server.Http.Addr)
	assert.Equal(t, 2*time.Second, bc.Server.Http.Timeout.AsDuration())
	assert.Equal(t, "ch.internal", bc.Data.Clickhouse.Host)
	assert.Equal(t, 8443, bc.Data.Clickhouse.Port)
	assert.Equal(t, 64, bc.Tracking.QueueSize)
	assert.Nil(t, bc.Data.Redis)
	assert.Zero(t, (*Duration)(nil).AsDuration())
}
