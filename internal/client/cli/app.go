package cli

import (
	"context"
	"database/sql"
	"io"
	"net/http"

	"github.com/dmitrijs2005/fileconv/internal/client/client"
	"github.com/dmitrijs2005/fileconv/internal/client/config"
	"github.com/dmitrijs2005/fileconv/internal/client/progress"
	"github.com/dmitrijs2005/fileconv/internal/client/repositories/history"
	"github.com/dmitrijs2005/fileconv/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fileconv/internal/client/repositories/records"
	"github.com/dmitrijs2005/fileconv/internal/client/services"
	"github.com/dmitrijs2005/fileconv/internal/client/task"
	"github.com/dmitrijs2005/fileconv/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	logOut io.Writer

	db       *sql.DB
	api      *client.HTTPClient
	history  services.HistoryService
	records  services.RecordService
	download services.DownloadService
}

func NewApp(ctx context.Context, cfg *config.Config, out, logOut io.Writer) (*App, error) {
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DBPath, "error", err)
		return nil, err
	}

	a := &App{
		config:   cfg,
		out:      out,
		logOut:   logOut,
		db:       db,
		records:  services.NewRecordService(records.NewSQLiteRepository(db), services.DefaultKeepRecords),
		download: services.NewDownloadService(cfg.OutputDir, &http.Client{Timeout: cfg.UploadTimeout}),
	}
	a.wire(log)
	return a, nil
}

// wire builds the parts that depend on the API address and the logger.
func (a *App) wire(log logging.Logger) {
	a.log = log
	a.api = client.NewHTTPClient(a.config.APIBaseURL,
		client.WithUploadTimeout(a.config.UploadTimeout),
		client.WithRequestTimeout(a.config.RequestTimeout),
	)
	a.history = services.NewHistoryService(a.api, history.NewSQLiteRepository(a.db), metadata.NewSQLiteRepository(a.db), log)
}

func (a *App) Close() error {
	return a.db.Close()
}

// newController builds a controller for one task, with the band profile
// matching how progress will be observed.
func (a *App) newController() *task.Controller {
	opts := progress.Options{
		Mode:           progress.Mode(a.config.ProgressMode),
		MaxReconnects:  a.config.MaxReconnects,
		ReconnectDelay: a.config.ReconnectDelay,
		PollInterval:   a.config.PollInterval,
		PollTimeout:    a.config.PollTimeout,
	}
	listener := progress.NewListener(a.api, opts, a.log)

	bands := task.StreamBands
	if opts.Mode == progress.ModePoll {
		bands = task.PollBands
	}
	return task.NewController(a.api, listener, task.WithBands(bands), task.WithLogger(a.log))
}
