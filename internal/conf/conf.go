package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the root of the configuration tree scanned from configs/config.yaml.
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Tracking *Tracking `json:"tracking"`
	Log      *Log      `json:"log"`
}

type Server struct {
	Http *Server_HTTP `json:"http"`
}

type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Data struct {
	Database   *Data_Database   `json:"database"`
	Redis      *Data_Redis      `json:"redis"`
	Clickhouse *Data_ClickHouse `json:"clickhouse"`
}

// Data_Database points at the short URL registry.
type Data_Database struct {
	Driver      string `json:"driver"`
	Source      string `json:"source"`
	AutoMigrate bool   `json:"auto_migrate"`
}

// Data_Redis configures the short URL lookup cache. An empty Addr disables caching.
type Data_Redis struct {
	Addr         string    `json:"addr"`
	Password     string    `json:"password"`
	Db           int       `json:"db"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
	CacheTtl     *Duration `json:"cache_ttl"`
}

// Data_ClickHouse configures the click event store. An empty Host disables
// tracking and stats.
type Data_ClickHouse struct {
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Database    string    `json:"database"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	Timeout     *Duration `json:"timeout"`
	CreateTable bool      `json:"create_table"`
}

type Tracking struct {
	QueueSize        int       `json:"queue_size"`
	Workers          int       `json:"workers"`
	EventTimeout     *Duration `json:"event_timeout"`
	StatsParallelism int       `json:"stats_parallelism"`
	SessionCookie    string    `json:"session_cookie"`
	VisitorCookie    string    `json:"visitor_cookie"`
}

type Log struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMb  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Duration accepts either a Go duration string ("10s") or a number of seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// AsDuration returns the wrapped value, or zero for a nil receiver.
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}
