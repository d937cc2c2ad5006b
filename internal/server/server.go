// Package server は、5段階ウィザードを Web 画面として提供します。
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/shouni/go-emotion-comic/internal/builder"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Server はウィザードの HTTP ハンドラ群です。
type Server struct {
	app    *builder.AppContext
	tmpl   *template.Template
	logger *slog.Logger
	now    func() time.Time
}

// New は Server を生成します。テンプレートの解析に失敗した場合はエラーなのだ。
func New(appCtx *builder.AppContext, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの解析に失敗しました: %w", err)
	}
	return &Server{app: appCtx, tmpl: tmpl, logger: logger, now: time.Now}, nil
}

// Router はミドルウェアとルートを設定した chi.Router を返します。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if limit := s.app.Config.RateLimitPerMin; limit > 0 {
		r.Use(httprate.LimitByIP(limit, time.Minute))
	}

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Route("/step", func(r chi.Router) {
			r.Post("/profile", s.handleProfile)
			r.Post("/situation", s.handleSituation)
			r.Post("/emotion", s.handleEmotion)
			r.Post("/reason", s.handleReason)
		})
		r.Post("/generate", s.handleGenerate)
		r.Post("/back", s.handleBack)
		r.Post("/reset", s.handleReset)
		r.Get("/comic.md", s.handleMarkdown)
		r.Get("/prompts.txt", s.handlePrompts)
	})

	return r
}

// Run は addr で待ち受け、ctx が終了したらグレースフルに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Web サーバーを起動します", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Web サーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗しました: %w", err)
	}
	return nil
}
