package main

import (
	"testing"

	"linktrack/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireApp_WithoutClickStore(t *testing.T) {
	app, cleanup, err := wireApp(
		&conf.Server{Http: &conf.Server_HTTP{Addr: "127.0.0.1:0"}},
		&conf.Data{Database: &conf.Data_Database{
			Driver:      "sqlite3",
			Source:      "file:wire_test?mode=memory&cache=shared",
			AutoMigrate: true,
		}},
		&conf.Tracking{Workers: 1},
		log.DefaultLogger,
	)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.Equal(t, Name, app.Name())
}
