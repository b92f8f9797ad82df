// Package editor is a small HTTP host that reproduces the quick-post editor
// page and its save flow, driving the injector and the save merger through
// the hook pipeline.
package editor

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/internal/store"
	"github.com/goliatone/go-quickpost/pkg/access"
	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/hooks"
	"github.com/goliatone/go-quickpost/pkg/inject"
	rendertemplate "github.com/goliatone/go-quickpost/pkg/render/template"
	"github.com/goliatone/go-quickpost/pkg/render/template/pongo"
	"github.com/goliatone/go-quickpost/pkg/savehook"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Page path and the hooks the page fires.
const (
	PagePath = "/press-this.php"

	HookHead          = "admin_head"
	HookEnqueue       = "admin_enqueue_scripts-press-this.php"
	HookFooter        = "admin_footer"
	HookFooterScripts = "admin_print_footer_scripts-press-this.php"
)

// Priorities of the quickpost actions on the host hooks.
const (
	PriorityControls = 20
	PriorityFields   = hooks.DefaultPriority
	PriorityAssets   = hooks.DefaultPriority
	PriorityMerge    = hooks.DefaultPriority
)

// Storage persists items and answers term queries.
type Storage interface {
	taxonomy.TermSource
	savehook.ContentTypeResolver
	CreateDraft(ctx context.Context, contentType string) (int64, error)
	Post(ctx context.Context, id int64) (store.Post, error)
	SavePost(ctx context.Context, payload savehook.Payload) (int64, error)
}

// Option customises a Server.
type Option func(*Server)

// WithActor sets the user the editor acts for.
func WithActor(actor access.Actor) Option {
	return func(s *Server) {
		s.actor = actor
	}
}

// WithContentType sets the type of drafts the editor creates.
func WithContentType(contentType string) Option {
	return func(s *Server) {
		if trimmed := strings.TrimSpace(contentType); trimmed != "" {
			s.contentType = trimmed
		}
	}
}

// WithInjectorOptions passes extra options to the injector built by New.
func WithInjectorOptions(options ...inject.Option) Option {
	return func(s *Server) {
		s.injectOptions = append(s.injectOptions, options...)
	}
}

// WithFieldRenderer renders field inputs below the content input.
func WithFieldRenderer(renderer inject.FieldRenderer) Option {
	return func(s *Server) {
		s.fieldRenderer = renderer
	}
}

// WithFieldStore forwards submitted field values to store.
func WithFieldStore(updater fields.Updater) Option {
	return func(s *Server) {
		s.fieldStore = updater
	}
}

// WithAssets serves the runtime files from fsys under base.
func WithAssets(fsys fs.FS, base string) Option {
	return func(s *Server) {
		s.assets = fsys
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			s.assetBase = trimmed
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server hosts the editor page.
type Server struct {
	storage   Storage
	registry  taxonomy.Registry
	injector  *inject.Injector
	actions   *hooks.Actions
	saves     *hooks.Chain[savehook.SaveRequest]
	templates rendertemplate.TemplateRenderer

	actor         access.Actor
	contentType   string
	assets        fs.FS
	assetBase     string
	fieldRenderer inject.FieldRenderer
	fieldStore    fields.Updater
	injectOptions []inject.Option
	logger        *zap.Logger
}

// New wires the injector and the save merger onto the host hooks.
func New(storage Storage, registry taxonomy.Registry, options ...Option) (*Server, error) {
	if storage == nil {
		return nil, errors.New("editor: storage is required")
	}
	s := &Server{
		storage:     storage,
		registry:    registry,
		saves:       &hooks.Chain[savehook.SaveRequest]{},
		contentType: savehook.DefaultContentType,
		assetBase:   inject.DefaultAssetBase,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.actions = hooks.NewActions(s.logger)

	injectOptions := []inject.Option{
		inject.WithTermSource(storage),
		inject.WithAssetBase(s.assetBase),
		inject.WithLogger(s.logger.Named("inject")),
	}
	if s.fieldRenderer != nil {
		injectOptions = append(injectOptions, inject.WithFieldRenderer(s.fieldRenderer))
	}
	injector, err := inject.New(registry, append(injectOptions, s.injectOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	s.injector = injector

	engine, err := pongo.New(pongo.WithName("editor"), pongo.WithFS(embeddedTemplates))
	if err != nil {
		return nil, fmt.Errorf("editor: configure templates: %w", err)
	}
	s.templates = engine

	mergerOptions := []savehook.Option{
		savehook.WithContentTypes(storage),
		savehook.WithLogger(s.logger.Named("savehook")),
	}
	if s.fieldStore != nil {
		mergerOptions = append(mergerOptions, savehook.WithFieldStore(s.fieldStore))
	}
	savehook.New(registry, mergerOptions...).Register(s.saves, PriorityMerge)

	s.registerActions()
	return s, nil
}

func (s *Server) registerActions() {
	s.actions.Add(HookEnqueue, "quickpost-assets", PriorityAssets, func(ctx context.Context, w io.Writer) error {
		s.injector.Assets(ctx, w)
		return nil
	})
	s.actions.Add(HookFooter, "quickpost-controls", PriorityControls, func(ctx context.Context, w io.Writer) error {
		s.injector.Footer(ctx, w, requestFrom(ctx))
		return nil
	})
	s.actions.Add(HookFooterScripts, "quickpost-fields", PriorityFields, func(ctx context.Context, w io.Writer) error {
		s.injector.Fields(ctx, w, requestFrom(ctx))
		return nil
	})
}

// Actions exposes the page hooks so callers can add their own output.
func (s *Server) Actions() *hooks.Actions {
	return s.actions
}

// SaveChain exposes the save filter chain.
func (s *Server) SaveChain() *hooks.Chain[savehook.SaveRequest] {
	return s.saves
}

// Handler returns the HTTP handler serving the page and the runtime assets.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PagePath, s.handlePage)
	mux.HandleFunc("POST "+PagePath, s.handleSave)
	if s.assets != nil {
		prefix := s.assetBase + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServerFS(s.assets)))
	}
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, PagePath, http.StatusFound)
	})
	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("editor listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("editor: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("editor: shutdown: %w", err)
		}
		return nil
	}
}

type requestKey struct{}

func withRequest(ctx context.Context, req inject.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

func requestFrom(ctx context.Context) inject.Request {
	req, _ := ctx.Value(requestKey{}).(inject.Request)
	return req
}
