package main

import (
	"context"
	"fmt"
	"strings"

	"datapilot/agent"
	"datapilot/analysis"
	"datapilot/config"
	"datapilot/datastore"
	"datapilot/dbpool"
	"datapilot/export"
	"datapilot/logger"
	"datapilot/session"
	"datapilot/viz"
)

// App is the facade over the whole analysis core. Every method resolves a
// session first and wraps failures in ServiceError so callers see a uniform
// [Service.Operation] shape.
type App struct {
	cfg      config.Config
	logger   *logger.Logger
	pool     *dbpool.DBManager
	sessions *session.Manager
	importer *datastore.Importer
	analysis *analysis.Engine
	pdf      *export.PDFService
	logFn    func(string)
	detailFn func(string)
}

// NewApp wires the application services. newModel may be nil to use the
// configured LLM provider.
func NewApp(cfg config.Config, newModel session.ModelFactory) *App {
	cfg.ApplyDefaults()

	lg := logger.NewLogger()
	lg.SetDetailed(cfg.DetailedLog)
	if cfg.DataCacheDir != "" {
		if err := lg.Init(cfg.DataCacheDir); err != nil {
			fmt.Println("Warning: logging disabled:", err)
		}
	}
	logFn := lg.Log
	detailFn := lg.Detail

	pool := dbpool.New(dbpool.EngineSQLite, logFn)
	return &App{
		cfg:      cfg,
		logger:   lg,
		pool:     pool,
		sessions: session.NewManager(cfg, pool, newModel, logFn),
		importer: datastore.NewImporter(pool, cfg.MaxRows, detailFn),
		analysis: analysis.NewEngine(detailFn),
		pdf:      export.NewPDFService(),
		logFn:    logFn,
		detailFn: detailFn,
	}
}

// CreateSession opens a new session and returns its id. modelID picks the
// chat model for this session, empty meaning the configured default.
// strategy is "linear" or "graph"; empty means linear.
func (a *App) CreateSession(ctx context.Context, modelID, strategy string) (string, error) {
	s, err := a.sessions.Create(ctx, modelID, strategy)
	if err != nil {
		return "", WrapError("Session", "Create", err)
	}
	return s.ID, nil
}

// DeleteSession removes a session. When a turn is in flight, teardown is
// deferred until the turn completes, but the id stops resolving immediately.
func (a *App) DeleteSession(id string) error {
	return WrapError("Session", "Delete", a.sessions.Delete(id))
}

// SessionCount reports how many sessions are live.
func (a *App) SessionCount() int {
	return a.sessions.Count()
}

// IngestCSV parses CSV text and loads it as the session's dataset, replacing
// any previous table.
func (a *App) IngestCSV(sessionID, csvText string) (*datastore.IngestSummary, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Data", "IngestCSV", err)
	}
	raw, err := datastore.ParseCSV(strings.NewReader(csvText))
	if err != nil {
		return nil, WrapError("Data", "IngestCSV", err)
	}
	summary, err := s.Store.Ingest(raw)
	return summary, WrapError("Data", "IngestCSV", err)
}

// IngestTable loads an already-parsed raw table into the session.
func (a *App) IngestTable(sessionID string, raw datastore.RawTable) (*datastore.IngestSummary, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Data", "IngestTable", err)
	}
	summary, err := s.Store.Ingest(raw)
	return summary, WrapError("Data", "IngestTable", err)
}

// ImportFromDatabase pulls a table from an external MySQL or Snowflake
// database and ingests it into the session.
func (a *App) ImportFromDatabase(ctx context.Context, sessionID string, engine dbpool.Engine, dsn, table string) (*datastore.IngestSummary, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Data", "ImportFromDatabase", err)
	}
	raw, err := a.importer.ImportTable(ctx, engine, dsn, table)
	if err != nil {
		return nil, WrapError("Data", "ImportFromDatabase", err)
	}
	summary, err := s.Store.Ingest(raw)
	return summary, WrapError("Data", "ImportFromDatabase", err)
}

// Preview returns the first rows of the session's dataset, capped by the
// configured preview ceiling.
func (a *App) Preview(sessionID string, n int) ([]map[string]interface{}, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Data", "Preview", err)
	}
	if n <= 0 || n > a.cfg.MaxPreviewRows {
		n = a.cfg.MaxPreviewRows
	}
	return s.Store.Preview(n), nil
}

// Describe returns per-column summaries, for all columns when none are named.
func (a *App) Describe(sessionID string, columns ...string) ([]datastore.ColumnSummary, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Analysis", "Describe", err)
	}
	out, err := a.analysis.Describe(s.Store, columns...)
	return out, WrapError("Analysis", "Describe", err)
}

// Correlation returns the Pearson matrix over the named numeric columns, or
// all of them when none are named.
func (a *App) Correlation(sessionID string, columns ...string) (*analysis.CorrelationMatrix, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Analysis", "Correlation", err)
	}
	out, err := a.analysis.Correlation(s.Store, columns...)
	return out, WrapError("Analysis", "Correlation", err)
}

// TimeSeries buckets a numeric column over a datetime column at the given
// frequency ("day", "week", "month", "quarter", "year").
func (a *App) TimeSeries(sessionID, timeColumn, valueColumn, frequency string) (*analysis.TimeSeriesResult, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Analysis", "TimeSeries", err)
	}
	freq, err := analysis.ParseFrequency(frequency)
	if err != nil {
		return nil, WrapError("Analysis", "TimeSeries", err)
	}
	out, err := a.analysis.TimeSeries(s.Store, timeColumn, valueColumn, freq)
	return out, WrapError("Analysis", "TimeSeries", err)
}

// Visualize renders a chart over the session's dataset without going through
// the agent.
func (a *App) Visualize(sessionID string, req viz.ChartRequest) (*viz.Artifact, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Viz", "Visualize", err)
	}
	engine := viz.NewEngine(a.detailFn)
	out, err := engine.Render(s.Store, req)
	return out, WrapError("Viz", "Visualize", err)
}

// Query runs a read-only SQL query against the session's dataset mirror. The
// loaded table is always named "dataset".
func (a *App) Query(sessionID, sqlText string) (*datastore.QueryResult, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Data", "Query", err)
	}
	out, err := s.Store.Query(sqlText)
	return out, WrapError("Data", "Query", err)
}

// Chat runs one agent turn in the session. A busy session rejects the call
// rather than queueing it.
func (a *App) Chat(ctx context.Context, sessionID, utterance string) (*agent.Reply, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Chat", "Chat", err)
	}
	reply, err := s.Chat(ctx, utterance)
	return reply, WrapError("Chat", "Chat", err)
}

// ClearHistory drops the session's conversation, keeping the dataset loaded.
func (a *App) ClearHistory(sessionID string) error {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return WrapError("Chat", "ClearHistory", err)
	}
	s.Orch.ClearHistory()
	return nil
}

// ExportAnalysisReport renders the session's column statistics and insights
// as a PDF.
func (a *App) ExportAnalysisReport(sessionID, title string) ([]byte, error) {
	s, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, WrapError("Export", "AnalysisReport", err)
	}
	summaries, err := a.analysis.Describe(s.Store)
	if err != nil {
		return nil, WrapError("Export", "AnalysisReport", err)
	}
	insightText, err := agent.BuildInsights(s.Store, a.analysis, "")
	if err != nil {
		return nil, WrapError("Export", "AnalysisReport", err)
	}
	var insights []string
	for _, line := range strings.Split(insightText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			insights = append(insights, strings.TrimPrefix(line, "- "))
		}
	}

	pdfBytes, err := a.pdf.Render(export.ReportData{
		Title:    title,
		RowCount: s.Store.RowCount(),
		Columns:  summaries,
		Insights: insights,
	})
	return pdfBytes, WrapError("Export", "AnalysisReport", err)
}

// Shutdown destroys every session and closes the logger.
func (a *App) Shutdown() {
	a.sessions.Shutdown()
	a.logger.Close()
}
